package ai

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/npcsense/faction"
)

// A rule script defines `check := func(engine) { ... }` returning a bool.
// engine is an immutable map describing the agent this tick plus a couple
// of host functions.
const ruleDispatchScript = `
__result = check(__engine)
`

// ScriptPredicate compiles src into a predicate. The compiled program is
// not safe for concurrent use; one simulation owns it.
func ScriptPredicate(name string, src []byte) (Predicate, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + ruleDispatchScript))
	if err := declare(script, name, scriptVar{"__engine", map[string]any{}}, scriptVar{"__result", false}); err != nil {
		return nil, err
	}
	script.SetImports(stdlib.GetModuleMap("math", "text"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %v", ErrScript, name, err)
	}

	return func(ctx *Context) bool {
		if err := compiled.Set("__engine", buildRuleEngine(ctx)); err != nil {
			ctx.Warn(fmt.Errorf("%w: %s: %v", ErrScript, name, err))
			return false
		}
		if err := compiled.Run(); err != nil {
			ctx.Warn(fmt.Errorf("%w: %s: %v", ErrScript, name, err))
			return false
		}
		return compiled.Get("__result").Bool()
	}, nil
}

type scriptVar struct {
	name  string
	value any
}

func declare(script *tengo.Script, rule string, vars ...scriptVar) error {
	for _, v := range vars {
		if err := script.Add(v.name, v.value); err != nil {
			return fmt.Errorf("%w: declare %s in %s: %v", ErrScript, v.name, rule, err)
		}
	}
	return nil
}

func buildRuleEngine(ctx *Context) *tengo.ImmutableMap {
	in := ctx.Input
	values := map[string]tengo.Object{
		"state":           &tengo.String{Value: ctx.State().String()},
		"faction":         &tengo.String{Value: string(in.Faction)},
		"visible":         &tengo.Int{Value: int64(len(in.Percept.Visible))},
		"heard":           boolObject(in.Percept.Heard != nil),
		"cue":             boolObject(in.Percept.Cue != nil),
		"suspicion":       &tengo.Float{Value: ctx.Agent.Suspicion.Timer},
		"max_suspicion":   &tengo.Float{Value: ctx.Agent.Suspicion.Max},
		// suspicion_level is suspicion / max_suspicion, 0 when max is 0.
		"suspicion_level": &tengo.Float{Value: ctx.Agent.Suspicion.Level()},
		"attack_range":    &tengo.Float{Value: ctx.Config.AttackRange},
	}

	primary := -1.0
	if p, ok := ctx.Primary(); ok {
		primary = p.Distance
	}
	values["primary_distance"] = &tengo.Float{Value: primary}

	board := make(map[string]tengo.Object, len(in.Blackboard))
	for k, v := range in.Blackboard {
		board[k] = &tengo.Float{Value: v}
	}
	values["blackboard"] = &tengo.ImmutableMap{Value: board}

	values["relation"] = &tengo.UserFunction{Name: "relation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 || in.Factions == nil {
			return &tengo.String{Value: faction.Neutral.String()}, nil
		}
		r := in.Factions.Relation(faction.ID(objectAsString(args[0])), faction.ID(objectAsString(args[1])))
		return &tengo.String{Value: r.String()}, nil
	}}

	values["set_relation"] = &tengo.UserFunction{Name: "set_relation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 3 || in.Factions == nil {
			return tengo.FalseValue, nil
		}
		r, err := faction.ParseRelation(objectAsString(args[2]))
		if err != nil {
			return tengo.FalseValue, nil
		}
		in.Factions.SetRelation(faction.ID(objectAsString(args[0])), faction.ID(objectAsString(args[1])), r)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
