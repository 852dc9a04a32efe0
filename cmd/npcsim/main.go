package main

import (
	"fmt"
	"os"

	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/prefabs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "npcsim",
		Short: "Run NPC perception and behaviour scenarios headless",
		Long: `npcsim steps levels of guards, scouts and villagers at a fixed rate and
reports every state transition, recovered warning and faction change.

Archetypes and faction tables are read from --prefabs, levels from --levels.
Files on disk override the built-in copies.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every transition at debug level")
	flags.StringVar(&prefabs.Dir, "prefabs", prefabs.Dir, "directory checked for archetype, faction and script overrides")
	flags.StringVar(&levels.Dir, "levels", levels.Dir, "directory checked for level overrides")

	root.AddCommand(
		newRunCmd(a),
		newWatchCmd(a),
		newFactionsCmd(),
		newListCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
