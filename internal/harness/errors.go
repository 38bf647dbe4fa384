// internal/harness/errors.go

package harness

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRejected 代表 transition 未通過 Precondition，呼叫端應重新產生。
	ErrRejected = errors.New("transition rejected by precondition")

	// ErrHarnessDefect 代表 Precondition 放行了模型判定非法的 transition：
	// 過濾條件與帳本實際限制已不一致，屬測試框架本身的缺陷。
	ErrHarnessDefect = errors.New("precondition admitted an illegal transition")

	// ErrTooManyRejections 代表連續產生的 transition 都被拒絕。
	ErrTooManyRejections = errors.New("too many rejected transitions")
)

// DivergenceError 描述帳本與模型在第 Step 步（自 0 起）出現的差異，
// 並附上導致差異的完整 transition 序列。
type DivergenceError struct {
	Step   int
	Reason string
	Trace  []Transition
	Err    error
}

func (e *DivergenceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "divergence at step %d: %s", e.Step, e.Reason)
	sb.WriteString("\ntransitions:")
	for i, tr := range e.Trace {
		fmt.Fprintf(&sb, "\n  %2d. %s", i, tr)
	}
	return sb.String()
}

func (e *DivergenceError) Unwrap() error {
	return e.Err
}
