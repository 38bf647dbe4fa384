// internal/storage/jsonstore.go
//
// 提供軌跡 (Trace) 的 JSON 序列化與反序列化實作。
// 採「原子寫入」：先寫入 .tmp 檔，再以 rename() 取代原檔。
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const traceVersion = 1

// NewRunID 產生一個執行批次 ID，供同一批次寫出的所有軌跡共用。
func NewRunID() string {
	return uuid.NewString()
}

// LoadTrace 讀取指定路徑的 JSON 軌跡。
// 版本號不符時回傳錯誤，避免以錯誤格式重播。
func LoadTrace(path string) (Trace, error) {
	var tr Trace
	f, err := os.Open(path)
	if err != nil {
		return tr, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&tr); err != nil {
		return tr, fmt.Errorf("decode %s: %w", path, err)
	}
	if tr.Meta.Version != traceVersion {
		return tr, fmt.Errorf("trace %s: unsupported version %d", path, tr.Meta.Version)
	}
	return tr, nil
}

// SaveTrace 將軌跡以縮排 JSON 原子寫入 path。
// 流程：
//  1. 設定 Meta.Storage、Version、時間戳；RunID 為空時補上新值。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 以 os.Rename() 取代正式檔案。
func SaveTrace(path string, tr Trace) error {
	tr.Meta.Storage = "json_trace"
	tr.Meta.Version = traceVersion
	tr.Meta.Timestamp = time.Now()
	if tr.Meta.RunID == "" {
		tr.Meta.RunID = NewRunID()
	}
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tr); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	// 原子替換
	return os.Rename(tmp, path)
}
