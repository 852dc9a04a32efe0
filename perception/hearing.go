package perception

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/faction"
)

// NoiseEvent is a sound made somewhere in the world during one tick.
// Source and Faction are zero for sounds without a known maker.
type NoiseEvent struct {
	Seq     uint64
	Origin  cp.Vector
	Volume  float64
	Source  common.Entity
	Faction faction.ID
}

// Heard is the noise an agent picked up this tick.
type Heard struct {
	Event  NoiseEvent
	Volume float64
}

// Attenuate falls off linearly with distance and reaches zero at range.
func Attenuate(volume, distance, hearingRange float64) float64 {
	if hearingRange <= 0 || distance >= hearingRange || volume <= 0 {
		return 0
	}
	return volume * (1 - distance/hearingRange)
}

// Listen evaluates every event independently and returns the loudest one
// that reaches the threshold, or nil. Ties go to the earlier event.
func Listen(obs Observer, events []NoiseEvent, resolver faction.Resolver) *Heard {
	var best *Heard
	for _, ev := range events {
		if ev.Source.Valid() && ev.Source == obs.ID {
			continue
		}
		if ev.Faction != "" && resolver != nil && resolver.Relation(obs.Faction, ev.Faction) == faction.Friend {
			continue
		}
		vol := Attenuate(ev.Volume, obs.Position.Distance(ev.Origin), obs.Profile.HearingRange)
		if vol <= 0 || vol < obs.Profile.HearingThreshold {
			continue
		}
		if best != nil && vol <= best.Volume {
			continue
		}
		best = &Heard{Event: ev, Volume: vol}
	}
	return best
}

// NoiseBuffer collects noise for broadcast. Events emitted while a tick is
// running are heard on the following tick; every listener sees the same set.
type NoiseBuffer struct {
	seq     uint64
	next    []NoiseEvent
	current []NoiseEvent
}

// Emit stamps ev with a sequence number and queues it.
func (b *NoiseBuffer) Emit(ev NoiseEvent) NoiseEvent {
	b.seq++
	ev.Seq = b.seq
	b.next = append(b.next, ev)
	return ev
}

// Flip makes the queued events current and starts a fresh queue.
func (b *NoiseBuffer) Flip() []NoiseEvent {
	b.current = b.next
	b.next = nil
	return b.current
}

// Current returns the events being broadcast this tick.
func (b *NoiseBuffer) Current() []NoiseEvent {
	if b == nil {
		return nil
	}
	return b.current
}
