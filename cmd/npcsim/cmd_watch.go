package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/prefabs"
	"github.com/milk9111/npcsense/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "watch <level>",
		Short: "Run a level live and pick up edits to its files",
		Long: `Steps the level in real time. Edits to the level's faction table are
swapped into the running simulation; any other archetype, script or level
edit restarts the run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchLevel(ctx, a.logger, cmd.OutOrStdout(), args[0], *opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func watchDirs() []string {
	var dirs []string
	for _, dir := range []string{prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"), levels.Dir} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// liveRun steps one scenario at wall-clock pace on its own goroutine.
type liveRun struct {
	sc     *sim.Scenario
	cancel context.CancelFunc
	done   chan struct{}
}

func startLive(ctx context.Context, logger *zap.Logger, out io.Writer, name string, opts runOptions) (*liveRun, error) {
	lvl, err := levels.Load(name)
	if err != nil {
		return nil, err
	}
	sc, err := sim.NewScenario(lvl, sim.Options{Logger: logger, Mover: opts.mover()})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	run := &liveRun{sc: sc, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(run.done)
		ticker := time.NewTicker(time.Duration(opts.dt * float64(time.Second)))
		defer ticker.Stop()
		pace := func(sim.Report) {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
		}
		sum, err := sc.Run(ctx, opts.ticks, opts.dt, pace)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("run failed", zap.String("level", name), zap.Error(err))
			}
			return
		}
		printSummary(out, sum)
	}()
	return run, nil
}

func (r *liveRun) stop() {
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
}

func watchLevel(ctx context.Context, logger *zap.Logger, out io.Writer, name string, opts runOptions) error {
	if opts.dt <= 0 {
		return fmt.Errorf("watch: dt must be positive")
	}
	dirs := watchDirs()
	if len(dirs) == 0 {
		return fmt.Errorf("watch: none of %s, %s exist", prefabs.Dir, levels.Dir)
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	restart := func(cur *liveRun) *liveRun {
		cur.stop()
		next, err := startLive(ctx, logger, out, name, opts)
		if err != nil {
			// A half-edited file is normal while watching; wait for the next save.
			logger.Warn("start failed", zap.String("level", name), zap.Error(err))
			return nil
		}
		return next
	}
	live := restart(nil)
	defer func() { live.stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Events:
			if !ok {
				return nil
			}
			logger.Info("file changed", zap.String("path", change.Path), zap.Stringer("kind", change.Kind))
			if change.Kind == prefabs.ChangeFactions && live != nil && filepath.Base(change.Path) == live.sc.FactionsFile() {
				if err := live.sc.ReloadFactions(); err != nil {
					logger.Warn("faction reload failed", zap.Error(err))
				}
				continue
			}
			live = restart(live)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
