// internal/harness/precondition.go

package harness

import (
	"fmt"

	"eventbank/internal/model"
)

// Mode 決定 Precondition 的嚴格程度。
type Mode int

const (
	// Strict 只放行帳本必定接受的 transition；帳本回傳任何錯誤都視為失敗。
	Strict Mode = iota
	// Predictive 只檢查結構條件（至少一個帳戶），
	// 其餘非法操作照樣送入帳本，並要求帳本回傳與模型預測相同的錯誤類型。
	Predictive
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Predictive:
		return "predictive"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode 為 String 的反函式。
func ParseMode(s string) (Mode, error) {
	switch s {
	case "strict", "":
		return Strict, nil
	case "predictive":
		return Predictive, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Precondition 判斷 tr 在模型 m 目前狀態下是否可套用。
// 回傳 false 的 transition 必須丟棄重新產生，不得送入帳本。
func Precondition(m *model.Bank, tr Transition, mode Mode) bool {
	if tr.Kind == Open {
		return true
	}
	n := m.Len()
	if n == 0 {
		return false
	}
	if mode == Predictive {
		return true
	}

	a := m.Account(tr.Account.Resolve(n))
	switch tr.Kind {
	case Deposit:
		return a.Mutable() && a.CanCredit(tr.Amount)
	case Withdraw:
		return a.Mutable() && a.CanCover(tr.Amount) && a.CanDebit(tr.Amount)
	case Transfer:
		b := m.Account(tr.Target.Resolve(n))
		return a.ID != b.ID && a.Mutable() && b.Mutable() &&
			a.CanCover(tr.Amount) && a.CanDebit(tr.Amount) && b.CanCredit(tr.Amount)
	case Freeze, Unfreeze, Close:
		return !a.Closed
	}
	return false
}
