package common

import "strconv"

// Entity is a generational handle: the low 32 bits are the slot id, the
// high 32 bits the generation. Zero is never a live entity.
type Entity uint64

const entityIDBits = 32

func MakeEntity(id, gen uint32) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) ID() uint32 {
	return uint32(e)
}

func (e Entity) Generation() uint32 {
	return uint32(uint64(e) >> entityIDBits)
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e Entity) Valid() bool {
	return e.ID() > 0
}
