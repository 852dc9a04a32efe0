package levels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedLevelsLoad(t *testing.T) {
	names := List()
	require.Equal(t, []string{"ambush.json", "courtyard.json", "village.json"}, names)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			lvl, err := LoadLevelFromFS(name)
			require.NoError(t, err)
			assert.NotEmpty(t, lvl.Name)
			assert.NotEmpty(t, lvl.Entities)
		})
	}
}

func TestCourtyard(t *testing.T) {
	lvl, err := LoadLevelFromFS("courtyard")
	require.NoError(t, err)
	assert.Equal(t, "courtyard", lvl.Name)
	assert.Equal(t, "factions.yaml", lvl.Factions)
	require.Len(t, lvl.Walls, 2)
	assert.Equal(t, 1.5, lvl.Walls[1].Radius)

	guard := lvl.Entities[0]
	require.NotNil(t, guard.Patrol)
	assert.True(t, guard.Patrol.Loop)
	assert.Len(t, guard.Patrol.Points, 4)
	assert.Equal(t, 90.0, lvl.Entities[1].Heading)
}

func TestParseSortsEventsAndNamesFromFile(t *testing.T) {
	data := []byte(`{
  "entities": [{"prefab": "guard.yaml", "name": "g"}],
  "events": [
    {"tick": 9, "kind": "death", "target": "g"},
    {"tick": 3, "kind": "noise", "x": 1, "y": 2, "volume": 1},
    {"tick": 3, "kind": "prop", "target": "g", "key": "alarm", "value": 1}
  ]
}`)
	lvl, err := Parse("some/dir/test_yard.json", data)
	require.NoError(t, err)
	assert.Equal(t, "test_yard", lvl.Name)

	var kinds []string
	for _, ev := range lvl.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []string{EventNoise, EventProp, EventDeath}, kinds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		lvl  Level
		want string
	}{
		{
			name: "missing_prefab",
			lvl:  Level{Entities: []Entity{{Name: "a"}}},
			want: "entity 0 has no prefab",
		},
		{
			name: "duplicate_name",
			lvl:  Level{Entities: []Entity{{Prefab: "guard.yaml", Name: "a"}, {Prefab: "guard.yaml", Name: "a"}}},
			want: `duplicate entity name "a"`,
		},
		{
			name: "unknown_target",
			lvl: Level{
				Entities: []Entity{{Prefab: "guard.yaml", Name: "a"}},
				Events:   []TimedEvent{{Tick: 1, Kind: EventDeath, Target: "b"}},
			},
			want: `targets unknown entity "b"`,
		},
		{
			name: "unknown_kind",
			lvl:  Level{Events: []TimedEvent{{Tick: 1, Kind: "explode"}}},
			want: `unknown kind "explode"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.lvl.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	ok := Level{
		Entities: []Entity{{Prefab: "guard.yaml"}, {Prefab: "guard.yaml"}},
		Events:   []TimedEvent{{Kind: EventNoise}},
	}
	assert.NoError(t, ok.Validate(), "unnamed entities and untargeted noise are fine")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("bad.json", []byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "levels: unmarshal bad.json")

	_, err = LoadLevelFromFS("nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "levels: read nowhere")
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ambush.json"), []byte(`{"name": "edited"}`), 0o644))
	old := Dir
	Dir = dir
	t.Cleanup(func() { Dir = old })

	lvl, err := Load("ambush")
	require.NoError(t, err)
	assert.Equal(t, "edited", lvl.Name)

	lvl, err = Load("levels/village.json")
	require.NoError(t, err)
	assert.Equal(t, "village", lvl.Name)

	lvl, err = LoadFile(filepath.Join(dir, "ambush.json"))
	require.NoError(t, err)
	assert.Equal(t, "edited", lvl.Name)
}
