// internal/storage/model.go
//
// 定義「軌跡儲存層 (trace storage)」的結構模型。
// 差異測試失敗時，執行器會把導致失敗的完整 transition 序列寫成 JSON，
// 之後可由 replay 重新執行以重現問題。
// 本層僅定義資料結構，不涉入帳本或測試框架邏輯。
package storage

import "time"

// Meta 為所有軌跡檔的中繼資料 (metadata)。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，固定為 "json_trace"
	Version   int       `json:"version"`        // 結構版本號
	Timestamp time.Time `json:"timestamp"`      // 寫入時間
	RunID     string    `json:"run_id"`         // 產生此軌跡的執行批次
	Note      string    `json:"note,omitempty"` // 備註欄
}

// Step 為單一 transition 的序列化格式。
// Account / Target 為索引（依當下帳戶數取模），而非帳戶 ID。
type Step struct {
	Kind           string `json:"kind"`
	Account        uint64 `json:"account,omitempty"`
	Target         uint64 `json:"target,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	AllowOverdraft bool   `json:"allow_overdraft,omitempty"`
}

// Trace 為一次隨機走訪的完整紀錄。
type Trace struct {
	Meta    Meta   `json:"_meta"`
	Seed    uint64 `json:"seed"`
	Trial   int    `json:"trial"`
	Mode    string `json:"mode"`
	Steps   []Step `json:"steps"`
	Failure string `json:"failure,omitempty"`
}
