// cmd/banksim/run.go

package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventbank/internal/config"
	"eventbank/internal/harness"
	"eventbank/internal/storage"
)

func newRunCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run random walks against the ledger and the reference model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()
			_, err = soak(*cfg, logger)
			return err
		},
	}
	cmd.Flags().IntVarP(&cfg.Trials, "trials", "n", cfg.Trials, "Number of trials")
	cmd.Flags().IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Maximum transitions per trial")
	cmd.Flags().Int64Var(&cfg.MaxAmount, "max-amount", cfg.MaxAmount, "Maximum amount per transaction")
	cmd.Flags().Uint64VarP(&cfg.Seed, "seed", "s", cfg.Seed, "Master seed (0 picks one from the clock)")
	cmd.Flags().StringVarP(&cfg.TraceDir, "trace-dir", "o", cfg.TraceDir, "Directory for failing traces")
	return cmd
}

// soakReport 彙整一次 run 的統計。
type soakReport struct {
	Seed        uint64
	Trials      int
	Transitions int
	Rejected    int
	TracePath   string
}

// soak 依序執行 cfg.Trials 次試驗；第 i 次以 (seed, i) 作為亂數來源，
// 因此 seed 與 trial 即可重現同一次走訪。遇到第一個失敗即寫出軌跡並停止。
func soak(cfg config.AppConfig, logger *zap.Logger) (soakReport, error) {
	mode, err := harness.ParseMode(cfg.Mode)
	if err != nil {
		return soakReport{}, err
	}
	if cfg.MaxSteps < 1 {
		return soakReport{}, fmt.Errorf("max steps must be >= 1, got %d", cfg.MaxSteps)
	}
	if cfg.MaxAmount < 0 || cfg.MaxAmount > math.MaxInt64/int64(cfg.MaxSteps) {
		return soakReport{}, fmt.Errorf("max amount %d with %d steps can overflow a balance", cfg.MaxAmount, cfg.MaxSteps)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rep := soakReport{Seed: seed}
	runID := storage.NewRunID()
	gen := harness.NewGenerator()
	if cfg.MaxAmount > 0 {
		gen.MaxAmount = cfg.MaxAmount
	}
	logger.Info("soak started", zap.String("run_id", runID), zap.Uint64("seed", seed),
		zap.Int("trials", cfg.Trials), zap.Int("max_steps", cfg.MaxSteps), zap.Stringer("mode", mode))

	for trial := 0; trial < cfg.Trials; trial++ {
		src := rand.New(rand.NewPCG(seed, uint64(trial)))
		r := harness.NewRunner(harness.WithMode(mode), harness.WithLogger(logger.With(zap.Int("trial", trial))))
		steps := 1 + src.IntN(cfg.MaxSteps)

		walkErr := r.Walk(gen, src, steps)
		rep.Trials++
		rep.Transitions += len(r.Trace())
		rep.Rejected += r.Rejected()
		if walkErr == nil {
			continue
		}

		path := filepath.Join(cfg.TraceDir, fmt.Sprintf("banksim-%s-trial%d.json", runID[:8], trial))
		tr := storage.Trace{
			Meta:    storage.Meta{RunID: runID},
			Seed:    seed,
			Trial:   trial,
			Mode:    mode.String(),
			Steps:   harness.ToSteps(r.Trace()),
			Failure: walkErr.Error(),
		}
		if err := storage.SaveTrace(path, tr); err != nil {
			logger.Error("save trace", zap.String("path", path), zap.Error(err))
		} else {
			rep.TracePath = path
		}
		logger.Error("trial failed", zap.Int("trial", trial), zap.String("trace", rep.TracePath), zap.Error(walkErr))
		return rep, fmt.Errorf("trial %d (seed %d): %w", trial, seed, walkErr)
	}

	logger.Info("soak passed", zap.Int("trials", rep.Trials), zap.Int("transitions", rep.Transitions),
		zap.Int("rejected", rep.Rejected))
	return rep, nil
}
