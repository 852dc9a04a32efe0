package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// Dir is checked for on-disk overrides before the embedded copies.
var Dir = "levels"

type Level struct {
	Name     string       `json:"name"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Factions string       `json:"factions,omitempty"`
	Walls    []Wall       `json:"walls,omitempty"`
	Entities []Entity     `json:"entities,omitempty"`
	Events   []TimedEvent `json:"events,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wall is static geometry. A wall with Radius > 0 is a circular pillar at
// Min; otherwise it is the box Min..Max.
type Wall struct {
	Min    Point   `json:"min"`
	Max    Point   `json:"max"`
	Radius float64 `json:"radius,omitempty"`
}

type Patrol struct {
	Loop   bool    `json:"loop"`
	Points []Point `json:"points"`
}

// Entity is one spawn. Fields left zero keep the prefab's values.
type Entity struct {
	Prefab  string             `json:"prefab"`
	Name    string             `json:"name,omitempty"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Heading float64            `json:"heading,omitempty"` // degrees
	Faction string             `json:"faction,omitempty"`
	Patrol  *Patrol            `json:"patrol,omitempty"`
	Props   map[string]float64 `json:"props,omitempty"`
}

// Event kinds a level can schedule.
const (
	EventNoise    = "noise"
	EventDeath    = "death"
	EventTeleport = "teleport"
	EventCommand  = "command"
	EventProp     = "prop"
)

// TimedEvent fires at the start of Tick. Target names a spawned entity.
type TimedEvent struct {
	Tick   uint64  `json:"tick"`
	Kind   string  `json:"kind"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Volume float64 `json:"volume,omitempty"`
	State  string  `json:"state,omitempty"`
	Key    string  `json:"key,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelPath(name))
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	return Parse(name, data)
}

// Load prefers a file under Dir and falls back to the embedded level.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	if data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean))); err == nil {
		return Parse(name, data)
	}
	return LoadLevelFromFS(clean)
}

// LoadFile reads a level from an explicit path.
func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	return Parse(path, data)
}

func Parse(name string, data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("levels: %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	sort.SliceStable(lvl.Events, func(i, j int) bool {
		return lvl.Events[i].Tick < lvl.Events[j].Tick
	})
	return &lvl, nil
}

// Validate checks references inside the level.
func (l *Level) Validate() error {
	names := make(map[string]bool, len(l.Entities))
	for i, e := range l.Entities {
		if e.Prefab == "" {
			return fmt.Errorf("entity %d has no prefab", i)
		}
		if e.Name == "" {
			continue
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate entity name %q", e.Name)
		}
		names[e.Name] = true
	}
	for i, ev := range l.Events {
		switch ev.Kind {
		case EventNoise:
		case EventDeath, EventTeleport, EventCommand, EventProp:
			if !names[ev.Target] {
				return fmt.Errorf("event %d (%s) targets unknown entity %q", i, ev.Kind, ev.Target)
			}
		default:
			return fmt.Errorf("event %d has unknown kind %q", i, ev.Kind)
		}
	}
	return nil
}

// List returns the embedded level names, sorted.
func List() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if !strings.HasSuffix(s, ".json") {
		s += ".json"
	}
	return s
}
