// cmd/banksim/main.go

// banksim 以隨機走訪長時間驗證帳本：每次試驗建立新的帳本與參考模型，
// 失敗時將完整 transition 序列寫成 JSON 軌跡檔，之後可用 replay 重現。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventbank/internal/config"
)

func main() {
	cfg := config.Load()
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:          "banksim",
		Short:        "Differential random-walk tester for the event-sourced ledger",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "Precondition mode: strict or predictive")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log every applied transition")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level when not verbose")

	root.AddCommand(newRunCmd(cfg), newReplayCmd(cfg))
	return root
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg.Verbose {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
