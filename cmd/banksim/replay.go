// cmd/banksim/replay.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventbank/internal/config"
	"eventbank/internal/harness"
	"eventbank/internal/storage"
)

func newReplayCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace.json>",
		Short: "Replay a saved trace against fresh ledger and model instances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return replay(args[0], logger)
		},
	}
}

// replay 以軌跡檔內記錄的模式重新執行；軌跡未記錄模式時採 strict。
func replay(path string, logger *zap.Logger) error {
	tr, err := storage.LoadTrace(path)
	if err != nil {
		return err
	}
	mode, err := harness.ParseMode(tr.Mode)
	if err != nil {
		return fmt.Errorf("trace %s: %w", path, err)
	}
	trs, err := harness.FromSteps(tr.Steps)
	if err != nil {
		return fmt.Errorf("trace %s: %w", path, err)
	}

	logger.Info("replaying", zap.String("path", path), zap.String("run_id", tr.Meta.RunID),
		zap.Int("steps", len(trs)), zap.Stringer("mode", mode))
	if err := harness.Replay(trs, harness.WithMode(mode), harness.WithLogger(logger)); err != nil {
		logger.Error("replay failed", zap.Error(err))
		return err
	}
	logger.Info("replay passed", zap.String("recorded_failure", tr.Failure))
	return nil
}
