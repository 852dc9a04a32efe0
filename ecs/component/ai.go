package component

import "github.com/milk9111/npcsense/ai"

// Brain is an NPC's decision state plus the tuning and rule table it runs.
type Brain struct {
	Archetype string
	Agent     ai.Agent
	Config    ai.Config
	Rules     *ai.Rules
	// Last is the most recent tick's decision.
	Last ai.Decision
}

// Intent is what the brain asked for on the latest tick.
type Intent struct {
	ai.Intent
}

var BrainComponent = NewComponent[Brain]()
var IntentComponent = NewComponent[Intent]()
