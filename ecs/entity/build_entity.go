package entity

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/common"
	"github.com/milk9111/npcsense/ecs"
	"github.com/milk9111/npcsense/ecs/component"
	"github.com/milk9111/npcsense/perception"
	"github.com/milk9111/npcsense/prefabs"
)

type buildContext struct {
	PrefabPath string
	Name       string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":  addTransform,
	"faction":    addFaction,
	"senses":     addSenses,
	"brain":      addBrain,
	"blackboard": addBlackboard,
}

var componentBuildOrder = []string{
	"transform",
	"faction",
	"senses",
	"brain",
	"blackboard",
}

// BuildEntity spawns the archetype at prefabPath. On any failure the
// half-built entity is destroyed.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Name: spec.Name}

	names := make([]string, 0, len(spec.Components))
	for name := range spec.Components {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return buildRank(names[i]) < buildRank(names[j]) ||
			(buildRank(names[i]) == buildRank(names[j]) && names[i] < names[j])
	})

	for _, name := range names {
		builder, ok := componentRegistry[name]
		if !ok {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, spec.Components[name], ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		if err := SetEntityTransform(w, e, cp.Vector{}, 0); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}
	return e, nil
}

func buildRank(name string) int {
	for i, n := range componentBuildOrder {
		if n == name {
			return i
		}
	}
	return len(componentBuildOrder)
}

// SetEntityTransform places e. heading is in radians.
func SetEntityTransform(w *ecs.World, e ecs.Entity, pos cp.Vector, heading float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.Position = pos
	t.Heading = heading
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

// CompileRules appends scripted rules to the default table.
func CompileRules(specs []prefabs.RuleSpec) (*ai.Rules, error) {
	rules := ai.DefaultRules()
	if len(specs) == 0 {
		return rules, nil
	}
	extra := make([]ai.Rule, 0, len(specs))
	for _, rs := range specs {
		if rs.Script == "" {
			return nil, fmt.Errorf("rule %q: no script", rs.Name)
		}
		if rs.To == ai.Attack || rs.To == ai.Dead {
			return nil, fmt.Errorf("rule %q: cannot target %s: %w", rs.Name, rs.To, ai.ErrInvalidCommand)
		}
		src, err := prefabs.LoadScript(rs.Script)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rs.Name, err)
		}
		name := rs.Name
		if name == "" {
			name = rs.Script
		}
		pred, err := ai.ScriptPredicate(name, src)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		extra = append(extra, ai.Rule{Priority: rs.Priority, Name: name, To: rs.To, When: pred})
	}
	return rules.With(extra...), nil
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return SetEntityTransform(w, e, cp.Vector{X: spec.X, Y: spec.Y}, common.DegToRad(spec.Heading))
}

func addFaction(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.FactionComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode faction spec: %w", err)
	}
	if spec.Faction == "" {
		return fmt.Errorf("faction spec has no faction")
	}
	return ecs.Add(w, e, component.FactionMemberComponent.Kind(), &component.FactionMember{Faction: spec.Faction})
}

func addSenses(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SensesComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode senses spec: %w", err)
	}
	if raw == nil {
		spec.Profile = perception.DefaultProfile()
	}
	return ecs.Add(w, e, component.SensesComponent.Kind(), &component.Senses{Profile: spec.Profile})
}

func addBrain(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.BrainComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode brain spec: %w", err)
	}
	if raw == nil {
		spec.Config = ai.DefaultConfig()
	}
	rules, err := CompileRules(spec.Rules)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.BrainComponent.Kind(), &component.Brain{
		Archetype: ctx.Name,
		Agent:     ai.NewAgent(spec.Config),
		Config:    spec.Config,
		Rules:     rules,
	})
}

func addBlackboard(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.BlackboardComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode blackboard spec: %w", err)
	}
	values := make(map[string]float64, len(spec))
	for k, v := range spec {
		values[k] = v
	}
	return ecs.Add(w, e, component.BlackboardComponent.Kind(), &component.Blackboard{Values: values})
}
