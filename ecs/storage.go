package ecs

import "github.com/milk9111/npcsense/common"

// entityStore tracks entity generations, free ids and spawn order.
type entityStore struct {
	gen   []generation
	seq   []uint64
	alive []bool
	free  []entityID

	nextSeq uint64
	count   int
}

func (s *entityStore) create() Entity {
	var id entityID
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		s.seq = append(s.seq, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gen))
	}
	s.nextSeq++
	s.seq[id-1] = s.nextSeq
	s.alive[id-1] = true
	s.count++
	return common.MakeEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.ID() - 1
	s.gen[idx]++
	s.alive[idx] = false
	s.free = append(s.free, e.ID())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.ID()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.alive[id-1] && s.gen[id-1] == e.Generation()
}

// spawnSeq is the creation order of the live entity in slot id.
func (s *entityStore) spawnSeq(id entityID) uint64 {
	if id == 0 || int(id) > len(s.seq) {
		return 0
	}
	return s.seq[id-1]
}

func (s *entityStore) handle(id entityID) (Entity, bool) {
	if id == 0 || int(id) > len(s.gen) || !s.alive[id-1] {
		return 0, false
	}
	return common.MakeEntity(id, s.gen[id-1]), true
}
