package prefabs

import (
	"fmt"

	"github.com/milk9111/npcsense/ai"
	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/perception"
	"gopkg.in/yaml.v3"
)

// EntityBuildSpec is an archetype: a name plus raw component specs keyed by
// component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// DecodeComponentSpec re-decodes one raw component entry into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"` // degrees
}

type FactionComponentSpec struct {
	Faction faction.ID `yaml:"faction"`
}

// SensesComponentSpec fills unset fields from perception.DefaultProfile.
type SensesComponentSpec struct {
	perception.Profile `yaml:",inline"`
}

func (s *SensesComponentSpec) UnmarshalYAML(value *yaml.Node) error {
	type raw SensesComponentSpec
	out := raw{Profile: perception.DefaultProfile()}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*s = SensesComponentSpec(out)
	return nil
}

// RuleSpec adds a scripted row to the default transition table.
type RuleSpec struct {
	Name     string   `yaml:"name"`
	Priority int      `yaml:"priority"`
	To       ai.State `yaml:"to"`
	Script   string   `yaml:"script"`
}

// BrainComponentSpec fills unset tuning from ai.DefaultConfig.
type BrainComponentSpec struct {
	ai.Config `yaml:",inline"`
	Rules     []RuleSpec `yaml:"rules"`
}

func (s *BrainComponentSpec) UnmarshalYAML(value *yaml.Node) error {
	type raw BrainComponentSpec
	out := raw{Config: ai.DefaultConfig()}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*s = BrainComponentSpec(out)
	return nil
}

type BlackboardComponentSpec map[string]float64

// FactionSpec is the startup relation table.
type FactionSpec struct {
	Relations []faction.Entry `yaml:"relations"`
}

func LoadFactionSpec(filename string) (FactionSpec, error) {
	return LoadSpec[FactionSpec](filename)
}

// NewTable builds a relation table from spec.
func (s FactionSpec) NewTable() *faction.Table {
	return faction.NewTable(s.Relations...)
}
