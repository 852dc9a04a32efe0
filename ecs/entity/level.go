package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/perception"
)

// LoadedLevel is what LoadLevelToWorld produced.
type LoadedLevel struct {
	Geometry *perception.Space
	// Named maps level entity names to their spawned handles.
	Named map[string]ecs.Entity
	// Spawned lists every spawn in level order.
	Spawned []ecs.Entity
}

// LoadLevelToWorld builds the level's walls into a static space and spawns
// its entities in file order, which is also their tick order.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level) (*LoadedLevel, error) {
	if world == nil || lvl == nil {
		return nil, fmt.Errorf("load level: world and level are required")
	}
	out := &LoadedLevel{
		Geometry: BuildGeometry(lvl.Walls),
		Named:    make(map[string]ecs.Entity, len(lvl.Entities)),
	}

	for i, ent := range lvl.Entities {
		e, err := SpawnLevelEntity(world, ent)
		if err != nil {
			return nil, fmt.Errorf("load level %s: entity %d: %w", lvl.Name, i, err)
		}
		if ent.Name != "" {
			out.Named[ent.Name] = e
		}
		out.Spawned = append(out.Spawned, e)
	}
	return out, nil
}

// BuildGeometry turns level walls into chipmunk static shapes.
func BuildGeometry(walls []levels.Wall) *perception.Space {
	space := perception.NewSpace()
	for _, wall := range walls {
		if wall.Radius > 0 {
			space.AddCircle(toVec(wall.Min), wall.Radius)
			continue
		}
		space.AddBox(toVec(wall.Min), toVec(wall.Max))
	}
	return space
}

// SpawnLevelEntity builds the prefab and applies the level's overrides.
func SpawnLevelEntity(world *ecs.World, ent levels.Entity) (ecs.Entity, error) {
	e, err := BuildEntity(world, ent.Prefab)
	if err != nil {
		return 0, err
	}
	pos := cp.Vector{X: ent.X, Y: ent.Y}
	if err := SetEntityTransform(world, e, pos, common.DegToRad(ent.Heading)); err != nil {
		ecs.DestroyEntity(world, e)
		return 0, err
	}
	if ent.Faction != "" {
		if err := ecs.Add(world, e, component.FactionMemberComponent.Kind(), &component.FactionMember{Faction: faction.ID(ent.Faction)}); err != nil {
			ecs.DestroyEntity(world, e)
			return 0, err
		}
	}

	if brain, ok := ecs.Get(world, e, component.BrainComponent.Kind()); ok {
		if ent.Patrol != nil {
			brain.Config.Path = ai.Path{Loop: ent.Patrol.Loop}
			for _, p := range ent.Patrol.Points {
				brain.Config.Path.Points = append(brain.Config.Path.Points, toVec(p))
			}
		}
		anchorBrain(brain, e, pos)
	}

	if len(ent.Props) > 0 {
		bb, ok := ecs.Get(world, e, component.BlackboardComponent.Kind())
		if !ok {
			bb = &component.Blackboard{}
		}
		if bb.Values == nil {
			bb.Values = make(map[string]float64, len(ent.Props))
		}
		for k, v := range ent.Props {
			bb.Values[k] = v
		}
		if err := ecs.Add(world, e, component.BlackboardComponent.Kind(), bb); err != nil {
			ecs.DestroyEntity(world, e)
			return 0, err
		}
	}
	return e, nil
}

// AnchorBrain centres e's wander area on pos and seeds it from the handle
// unless the archetype set either, then restarts the agent.
func AnchorBrain(world *ecs.World, e ecs.Entity, pos cp.Vector) {
	if brain, ok := ecs.Get(world, e, component.BrainComponent.Kind()); ok {
		anchorBrain(brain, e, pos)
	}
}

func anchorBrain(brain *component.Brain, e ecs.Entity, pos cp.Vector) {
	if brain.Config.WanderCenter == (cp.Vector{}) {
		brain.Config.WanderCenter = pos
	}
	if brain.Config.Seed == 0 {
		brain.Config.Seed = uint64(e)
	}
	brain.Agent = ai.NewAgent(brain.Config)
}

func toVec(p levels.Point) cp.Vector {
	return cp.Vector{X: p.X, Y: p.Y}
}
