package perception

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttenuate(t *testing.T) {
	assert.InDelta(t, 0.5, Attenuate(1.0, 5, 10), 1e-12)
	assert.InDelta(t, 1.0, Attenuate(1.0, 0, 10), 1e-12)
	assert.Zero(t, Attenuate(1.0, 10, 10), "zero at range")
	assert.Zero(t, Attenuate(1.0, 15, 10), "zero beyond range")
	assert.Zero(t, Attenuate(1.0, 1, 0), "deaf agent")

	prev := Attenuate(2, 0, 10)
	for d := 0.5; d <= 10; d += 0.5 {
		cur := Attenuate(2, d, 10)
		require.LessOrEqual(t, cur, prev, "attenuation must not increase with distance")
		prev = cur
	}
}

func TestListen_ThresholdInclusive(t *testing.T) {
	obs := guard(cp.Vector{}, 0)
	obs.Profile.HearingRange = 10
	obs.Profile.HearingThreshold = 0.5
	ev := NoiseEvent{Seq: 1, Origin: cp.Vector{X: 5}, Volume: 1.0}

	heard := Listen(obs, []NoiseEvent{ev}, hostileTable())
	require.NotNil(t, heard)
	assert.InDelta(t, 0.5, heard.Volume, 1e-12)

	obs.Profile.HearingThreshold = 0.51
	assert.Nil(t, Listen(obs, []NoiseEvent{ev}, hostileTable()))
}

func TestListen_LoudestWins(t *testing.T) {
	obs := guard(cp.Vector{}, 0)
	obs.Profile.HearingRange = 10
	events := []NoiseEvent{
		{Seq: 1, Origin: cp.Vector{X: 8}, Volume: 1},
		{Seq: 2, Origin: cp.Vector{X: 2}, Volume: 1},
		{Seq: 3, Origin: cp.Vector{X: -2}, Volume: 1},
	}
	heard := Listen(obs, events, hostileTable())
	require.NotNil(t, heard)
	assert.Equal(t, uint64(2), heard.Event.Seq, "tie between 2 and 3 goes to the earlier event")
}

func TestListen_IgnoresSelfAndFriends(t *testing.T) {
	obs := guard(cp.Vector{}, 0)
	obs.Profile.HearingRange = 10
	events := []NoiseEvent{
		{Seq: 1, Origin: cp.Vector{X: 1}, Volume: 1, Source: obs.ID, Faction: "guards"},
		{Seq: 2, Origin: cp.Vector{X: 1}, Volume: 1, Source: common.MakeEntity(9, 0), Faction: "town"},
	}
	assert.Nil(t, Listen(obs, events, hostileTable()))

	events = append(events, NoiseEvent{Seq: 3, Origin: cp.Vector{X: 4}, Volume: 1, Source: common.MakeEntity(10, 0), Faction: "thieves"})
	heard := Listen(obs, events, hostileTable())
	require.NotNil(t, heard)
	assert.Equal(t, uint64(3), heard.Event.Seq)
}

func TestNoiseBufferBroadcastsOnce(t *testing.T) {
	var buf NoiseBuffer
	a := buf.Emit(NoiseEvent{Volume: 1})
	b := buf.Emit(NoiseEvent{Volume: 2})
	assert.Equal(t, uint64(1), a.Seq)
	assert.Equal(t, uint64(2), b.Seq)
	assert.Empty(t, buf.Current(), "nothing is broadcast before the flip")

	cur := buf.Flip()
	require.Len(t, cur, 2)
	assert.Len(t, buf.Current(), 2, "reading does not consume")
	assert.Len(t, buf.Current(), 2)

	assert.Empty(t, buf.Flip(), "events last exactly one tick")
}
