package harness

import (
	"testing"

	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"eventbank/internal/bank"
)

// rapidSource 讓 Generator 經由 rapid 抽值，失敗案例因此可被縮減。
type rapidSource struct {
	t *rapid.T
}

func (s rapidSource) IntN(n int) int {
	return rapid.IntRange(0, n-1).Draw(s.t, "n")
}

func (s rapidSource) Uint64() uint64 {
	return rapid.Uint64().Draw(s.t, "index")
}

// scriptSource 依序回傳預先排好的值，用於決定性測試。
type scriptSource struct {
	ints []int
	u64s []uint64
}

func (s *scriptSource) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptSource) Uint64() uint64 {
	v := s.u64s[0]
	s.u64s = s.u64s[1:]
	return v
}

func open(overdraft bool) Transition { return Transition{Kind: Open, AllowOverdraft: overdraft} }

func deposit(ix Index, amt int64) Transition {
	return Transition{Kind: Deposit, Account: ix, Amount: amt}
}

func withdraw(ix Index, amt int64) Transition {
	return Transition{Kind: Withdraw, Account: ix, Amount: amt}
}

func transfer(from, to Index, amt int64) Transition {
	return Transition{Kind: Transfer, Account: from, Target: to, Amount: amt}
}

func freeze(ix Index) Transition   { return Transition{Kind: Freeze, Account: ix} }
func unfreeze(ix Index) Transition { return Transition{Kind: Unfreeze, Account: ix} }
func closeAcct(ix Index) Transition {
	return Transition{Kind: Close, Account: ix}
}

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	return NewRunner(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

// leakyLedger 轉帳時只入帳不扣款。
type leakyLedger struct {
	*bank.Bank
}

func (l leakyLedger) Transfer(_, to bank.AccountID, amt int64) error {
	return l.Bank.Deposit(to, amt)
}

// frozenBlindLedger 存款時忽略凍結狀態。
type frozenBlindLedger struct {
	*bank.Bank
}

func (l frozenBlindLedger) Deposit(id bank.AccountID, amt int64) error {
	a, err := l.Get(id)
	if err == nil && a.Frozen && !a.Closed {
		_ = l.Bank.Unfreeze(id)
		defer l.Bank.Freeze(id)
	}
	return l.Bank.Deposit(id, amt)
}

// countingLedger 記錄帳本被呼叫的變更操作次數。
type countingLedger struct {
	*bank.Bank
	mutations int
}

func (l *countingLedger) Deposit(id bank.AccountID, amt int64) error {
	l.mutations++
	return l.Bank.Deposit(id, amt)
}

func (l *countingLedger) Withdraw(id bank.AccountID, amt int64) error {
	l.mutations++
	return l.Bank.Withdraw(id, amt)
}

func (l *countingLedger) Transfer(from, to bank.AccountID, amt int64) error {
	l.mutations++
	return l.Bank.Transfer(from, to, amt)
}

func (l *countingLedger) Close(id bank.AccountID) error {
	l.mutations++
	return l.Bank.Close(id)
}
