// internal/config/config.go
//
// 讀取 banksim 的執行設定。
// 先嘗試載入 .env，再由環境變數覆寫預設值；命令列旗標最後再覆寫本結構。
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig 為 banksim 的設定。
type AppConfig struct {
	Trials    int    // 試驗次數
	MaxSteps  int    // 每次試驗的最大步數，實際步數落在 [1, MaxSteps]
	MaxAmount int64  // 單筆金額上限
	Seed      uint64 // 0 代表以時間產生
	Mode      string // "strict" 或 "predictive"
	TraceDir  string // 失敗軌跡輸出目錄
	LogLevel  string // zap 等級
	Verbose   bool   // 開發模式 logger，輸出每一步
}

// Load 讀取設定。找不到 .env 時僅記錄一行並改用系統環境變數。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("banksim: no .env file found, relying on system env vars")
	}
	return FromEnv()
}

// FromEnv 只讀取環境變數，不載入 .env。
func FromEnv() AppConfig {
	return AppConfig{
		Trials:    getInt("BANKSIM_TRIALS", 256),
		MaxSteps:  getInt("BANKSIM_MAX_STEPS", 20),
		MaxAmount: int64(getInt("BANKSIM_MAX_AMOUNT", 1_000_000)),
		Seed:      getUint("BANKSIM_SEED", 0),
		Mode:      getEnv("BANKSIM_MODE", "strict"),
		TraceDir:  getEnv("BANKSIM_TRACE_DIR", "."),
		LogLevel:  getEnv("BANKSIM_LOG_LEVEL", "info"),
		Verbose:   getEnv("BANKSIM_VERBOSE", "") == "1",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getUint(key string, fallback uint64) uint64 {
	n, err := strconv.ParseUint(getEnv(key, ""), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
