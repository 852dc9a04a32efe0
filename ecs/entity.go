package ecs

import "github.com/milk9111/npcsense/common"

// Entity is a generational handle. A destroyed entity's slot is reused with
// a bumped generation, so stale handles stop resolving.
type Entity = common.Entity

type entityID = uint32
type generation = uint32
