package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/npcsense/faction"
	"github.com/milk9111/npcsense/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestRunPrintsSummaryPerLevel(t *testing.T) {
	out := execute(t, "run", "ambush", "village", "--ticks", "45", "--no-move")
	assert.Contains(t, out, "level=ambush")
	assert.Contains(t, out, "level=village")
	assert.Contains(t, out, "ticks=45")
	assert.Regexp(t, `scout\s+suspect`, out)
	assert.Less(t, bytes.Index([]byte(out), []byte("level=ambush")), bytes.Index([]byte(out), []byte("level=village")))
}

func TestRunUnknownLevel(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "atlantis"})
	assert.Error(t, root.Execute())
}

func TestFactions(t *testing.T) {
	out := execute(t, "factions")
	assert.Regexp(t, `guards\s+players\s+enemy`, out)
	assert.Regexp(t, `guards\s+villagers\s+friend`, out)
}

func TestList(t *testing.T) {
	out := execute(t, "list")
	assert.Contains(t, out, "guard.yaml")
	assert.Contains(t, out, "courtyard.json")
}

func TestLiveRunSwapsFactionTable(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	file := filepath.Join(dir, "factions.yaml")
	require.NoError(t, os.WriteFile(file, []byte("relations:\n  - {a: guards, b: players, relation: enemy}\n"), 0o644))
	old := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = old })

	live, err := startLive(context.Background(), zap.NewNop(), io.Discard, "ambush", runOptions{ticks: 10000, dt: 0.005, noMove: true})
	require.NoError(t, err)
	defer live.stop()
	assert.Equal(t, "factions.yaml", live.sc.FactionsFile())
	assert.Equal(t, faction.Enemy, live.sc.Sim.Factions().Relation("guards", "players"))

	require.NoError(t, os.WriteFile(file, []byte("relations: []\n"), 0o644))
	require.NoError(t, live.sc.ReloadFactions())
	assert.Eventually(t, func() bool {
		return live.sc.Sim.Factions().Relation("guards", "players") == faction.Neutral
	}, 2*time.Second, 5*time.Millisecond)
}
