package main

import (
	"context"
	"fmt"
	"io"

	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	ticks  int
	dt     float64
	speed  float64
	turn   float64
	noMove bool
}

func (o runOptions) mover() sim.Mover {
	if o.noMove {
		return nil
	}
	return sim.LineMover{BaseSpeed: o.speed, TurnRate: o.turn}
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.ticks, "ticks", 300, "ticks to simulate")
	cmd.Flags().Float64Var(&o.dt, "dt", 0.1, "seconds per tick")
	cmd.Flags().Float64Var(&o.speed, "speed", 3, "base movement speed in units per second")
	cmd.Flags().Float64Var(&o.turn, "turn-rate", 0, "max turn in radians per second, 0 snaps")
	cmd.Flags().BoolVar(&o.noMove, "no-move", false, "leave every agent where it spawned")
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [level...]",
		Short: "Run levels to completion and print a summary of each",
		Long: `Runs each named level (all built-in levels when none are given) in its own
simulation. Levels run in parallel; summaries are printed in argument order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = levels.List()
			}
			sums, err := runLevels(cmd.Context(), a.logger, args, *opts)
			if err != nil {
				return err
			}
			for _, sum := range sums {
				printSummary(cmd.OutOrStdout(), sum)
			}
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func runLevels(ctx context.Context, logger *zap.Logger, names []string, opts runOptions) ([]sim.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sums := make([]sim.Summary, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			sum, err := runLevel(ctx, logger, name, opts, nil)
			if err != nil {
				return err
			}
			sums[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sums, nil
}

func runLevel(ctx context.Context, logger *zap.Logger, name string, opts runOptions, onReport func(sim.Report)) (sim.Summary, error) {
	lvl, err := levels.Load(name)
	if err != nil {
		return sim.Summary{}, err
	}
	sc, err := sim.NewScenario(lvl, sim.Options{Logger: logger, Mover: opts.mover()})
	if err != nil {
		return sim.Summary{}, err
	}
	logger.Info("scenario started", zap.String("run", sc.RunID), zap.String("level", lvl.Name), zap.Int("entities", len(sc.Loaded.Spawned)))
	sum, err := sc.Run(ctx, opts.ticks, opts.dt, onReport)
	if err != nil {
		return sum, fmt.Errorf("level %s: %w", lvl.Name, err)
	}
	return sum, nil
}

func printSummary(w io.Writer, sum sim.Summary) {
	fmt.Fprintf(w, "level=%s run=%s ticks=%d transitions=%d warnings=%d faction_writes=%d\n",
		sum.Level, sum.RunID, sum.Ticks, sum.Transitions, sum.Warnings, sum.FactionWrites)
	for _, name := range sum.Names() {
		fmt.Fprintf(w, "  %-12s %s\n", name, sum.Final[name])
	}
}
