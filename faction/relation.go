package faction

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID names a faction.
type ID string

// Relation classifies how two factions regard each other.
type Relation int

const (
	Neutral Relation = iota
	Friend
	Enemy
)

func (r Relation) String() string {
	switch r {
	case Neutral:
		return "neutral"
	case Friend:
		return "friend"
	case Enemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// ParseRelation accepts the names produced by String, case-insensitively.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neutral", "":
		return Neutral, nil
	case "friend", "friendly", "ally":
		return Friend, nil
	case "enemy", "hostile":
		return Enemy, nil
	default:
		return Neutral, fmt.Errorf("faction: unknown relation %q", s)
	}
}

func (r *Relation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("faction: relation must be a string")
	}
	parsed, err := ParseRelation(value.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Relation) MarshalYAML() (any, error) {
	return r.String(), nil
}
