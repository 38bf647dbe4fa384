// internal/harness/transition.go

// Package harness 實作差異式 (differential) 模型測試：
// Generator 產生候選 transition，Precondition 依參考模型狀態過濾，
// Runner 將通過的 transition 同時套用到 bank.Bank 與 model.Bank，並逐步比對兩者可觀察狀態。
package harness

import (
	"fmt"

	"eventbank/internal/storage"
)

// Kind 為 transition 類型。
type Kind int

const (
	Open Kind = iota
	Deposit
	Withdraw
	Transfer
	Freeze
	Unfreeze
	Close
)

// AllKinds 列出所有 transition 類型。
var AllKinds = []Kind{Open, Deposit, Withdraw, Transfer, Freeze, Unfreeze, Close}

var kindNames = map[Kind]string{
	Open:     "open",
	Deposit:  "deposit",
	Withdraw: "withdraw",
	Transfer: "transfer",
	Freeze:   "freeze",
	Unfreeze: "unfreeze",
	Close:    "close",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind 為 String 的反函式。
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transition kind %q", s)
}

// Index 為帳戶選擇子：在套用時才依目前帳戶數取模解析，
// 因此產生 transition 時不需知道當下有哪些帳戶。
type Index uint64

// Resolve 回傳 Index 在 n 個帳戶中對應的位置；n 必須 > 0。
func (ix Index) Resolve(n int) int {
	return int(uint64(ix) % uint64(n))
}

// Transition 為一個候選操作。未使用的欄位依 Kind 忽略。
type Transition struct {
	Kind           Kind
	Account        Index // Deposit/Withdraw/Freeze/Unfreeze/Close 的帳戶；Transfer 的來源
	Target         Index // Transfer 的目標
	Amount         int64
	AllowOverdraft bool // Open
}

func (tr Transition) String() string {
	switch tr.Kind {
	case Open:
		return fmt.Sprintf("open(allow_overdraft=%t)", tr.AllowOverdraft)
	case Deposit, Withdraw:
		return fmt.Sprintf("%s(#%d, %d)", tr.Kind, tr.Account, tr.Amount)
	case Transfer:
		return fmt.Sprintf("transfer(#%d -> #%d, %d)", tr.Account, tr.Target, tr.Amount)
	default:
		return fmt.Sprintf("%s(#%d)", tr.Kind, tr.Account)
	}
}

// Describe 以目前 n 個帳戶解析索引後輸出，用於日誌。
func (tr Transition) Describe(n int) string {
	if n == 0 || tr.Kind == Open {
		return tr.String()
	}
	switch tr.Kind {
	case Deposit, Withdraw:
		return fmt.Sprintf("%s(@%d, %d)", tr.Kind, tr.Account.Resolve(n), tr.Amount)
	case Transfer:
		return fmt.Sprintf("transfer(@%d -> @%d, %d)", tr.Account.Resolve(n), tr.Target.Resolve(n), tr.Amount)
	default:
		return fmt.Sprintf("%s(@%d)", tr.Kind, tr.Account.Resolve(n))
	}
}

// ToSteps 將 transition 序列轉為可持久化的 storage.Step。
func ToSteps(trs []Transition) []storage.Step {
	out := make([]storage.Step, len(trs))
	for i, tr := range trs {
		out[i] = storage.Step{
			Kind:           tr.Kind.String(),
			Account:        uint64(tr.Account),
			Target:         uint64(tr.Target),
			Amount:         tr.Amount,
			AllowOverdraft: tr.AllowOverdraft,
		}
	}
	return out
}

// FromSteps 由 storage.Step 還原 transition 序列。
func FromSteps(steps []storage.Step) ([]Transition, error) {
	out := make([]Transition, len(steps))
	for i, s := range steps {
		k, err := ParseKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out[i] = Transition{
			Kind:           k,
			Account:        Index(s.Account),
			Target:         Index(s.Target),
			Amount:         s.Amount,
			AllowOverdraft: s.AllowOverdraft,
		}
	}
	return out, nil
}
