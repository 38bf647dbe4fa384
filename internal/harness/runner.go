// internal/harness/runner.go

package harness

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"eventbank/internal/bank"
	"eventbank/internal/model"
)

// Ledger 為 Runner 驅動的帳本操作集合，*bank.Bank 即為正式實作。
type Ledger interface {
	Open(allowOverdraft bool) bank.AccountID
	Deposit(id bank.AccountID, amt int64) error
	Withdraw(id bank.AccountID, amt int64) error
	Transfer(from, to bank.AccountID, amt int64) error
	Freeze(id bank.AccountID) error
	Unfreeze(id bank.AccountID) error
	Close(id bank.AccountID) error
	Balance(id bank.AccountID) (int64, error)
	Get(id bank.AccountID) (*bank.Account, error)
	Len() int
}

var _ Ledger = (*bank.Bank)(nil)

// DefaultMaxAttempts 為每一步連續被拒絕的上限。
// Open 永遠合法，正常情況下遠不會觸及。
const DefaultMaxAttempts = 1000

// Runner 擁有一組帳本與參考模型，執行單次隨機走訪。
// 兩者僅屬於此 Runner，每次試驗都應建立新的 Runner。
type Runner struct {
	ledger   Ledger
	model    *model.Bank
	accounts []bank.AccountID // 帳本回傳的 ID，順序與模型帳戶一致
	trace    []Transition

	mode        Mode
	maxAttempts int
	rejected    int
	logger      *zap.Logger
}

// Option 設定 Runner。
type Option func(*Runner)

func WithMode(m Mode) Option {
	return func(r *Runner) { r.mode = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLedger 以指定帳本取代預設的 bank.NewBank()；ledger 必須是全新的。
func WithLedger(l Ledger) Option {
	return func(r *Runner) { r.ledger = l }
}

// NewRunner 建立新的 Runner，帳本與模型皆為空。
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		model:       model.New(),
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.ledger == nil {
		r.ledger = bank.NewBank(bank.WithLogger(r.logger))
	}
	return r
}

// Mode 回傳目前模式。
func (r *Runner) Mode() Mode { return r.mode }

// Ledger 回傳受測帳本。
func (r *Runner) Ledger() Ledger { return r.ledger }

// Model 回傳參考模型；呼叫端不應修改。
func (r *Runner) Model() *model.Bank { return r.model }

// Accounts 回傳帳本 ID 清單的拷貝。
func (r *Runner) Accounts() []bank.AccountID {
	return append([]bank.AccountID(nil), r.accounts...)
}

// Trace 回傳目前為止已套用的 transition 序列。
func (r *Runner) Trace() []Transition {
	return append([]Transition(nil), r.trace...)
}

// Rejected 回傳被 Precondition 丟棄的 transition 數。
func (r *Runner) Rejected() int { return r.rejected }

// Accepts 以模型目前狀態判斷 tr 是否可套用。
func (r *Runner) Accepts(tr Transition) bool {
	return Precondition(r.model, tr, r.mode)
}

// Apply 將 tr 同時套用至模型與帳本，並比對兩者狀態：
//  1. 未通過 Precondition 回傳 ErrRejected，帳本不受影響。
//  2. 模型預測結果；Strict 模式下預測為錯誤即為 ErrHarnessDefect。
//  3. 帳本回傳的錯誤類型必須與預測相同；失敗的操作不得追加 log。
//  4. 最後執行 Check。
func (r *Runner) Apply(tr Transition) error {
	if !r.Accepts(tr) {
		r.rejected++
		return ErrRejected
	}
	n := r.model.Len()
	r.trace = append(r.trace, tr)

	if tr.Kind == Open {
		want := r.model.Open(tr.AllowOverdraft)
		got := r.ledger.Open(tr.AllowOverdraft)
		r.accounts = append(r.accounts, got)
		r.logger.Debug("apply", zap.Int("step", len(r.trace)-1), zap.Stringer("transition", tr),
			zap.Uint64("account", uint64(got)))
		if got != want {
			return r.diverge(nil, "open returned account %d, model expected %d", got, want)
		}
		return r.Check()
	}

	i, j := tr.Account.Resolve(n), tr.Target.Resolve(n)
	expected := applyModel(r.model, tr, i, j)
	if expected != nil && r.mode == Strict {
		return r.diverge(ErrHarnessDefect, "%s on model: %v", tr.Describe(n), expected)
	}

	before := r.ledger.Len()
	actual := r.applyLedger(tr, r.accounts[i], r.accounts[j])
	r.logger.Debug("apply", zap.Int("step", len(r.trace)-1), zap.String("transition", tr.Describe(n)),
		zap.String("outcome", bank.Kind(actual)))

	if bank.Kind(actual) != bank.Kind(expected) {
		return r.diverge(actual, "%s: ledger returned %s, model expected %s",
			tr.Describe(n), bank.Kind(actual), bank.Kind(expected))
	}
	if actual != nil && r.ledger.Len() != before {
		return r.diverge(actual, "%s: rejected operation appended to the log (%d -> %d)",
			tr.Describe(n), before, r.ledger.Len())
	}
	return r.Check()
}

// ApplyModel 將 tr 套用至模型 m（索引依 m 目前帳戶數解析），回傳模型預測的錯誤。
// 沒有任何帳戶時，除 Open 以外皆回傳 bank.ErrAccountNotFound。
func ApplyModel(m *model.Bank, tr Transition) error {
	if tr.Kind == Open {
		m.Open(tr.AllowOverdraft)
		return nil
	}
	n := m.Len()
	if n == 0 {
		return fmt.Errorf("%s: %w", tr, bank.ErrAccountNotFound)
	}
	return applyModel(m, tr, tr.Account.Resolve(n), tr.Target.Resolve(n))
}

func applyModel(m *model.Bank, tr Transition, i, j int) error {
	switch tr.Kind {
	case Deposit:
		return m.Deposit(i, tr.Amount)
	case Withdraw:
		return m.Withdraw(i, tr.Amount)
	case Transfer:
		return m.Transfer(i, j, tr.Amount)
	case Freeze:
		return m.Freeze(i)
	case Unfreeze:
		return m.Unfreeze(i)
	case Close:
		return m.Close(i)
	}
	panic(fmt.Sprintf("harness: unexpected transition %v", tr.Kind))
}

func (r *Runner) applyLedger(tr Transition, id, target bank.AccountID) error {
	switch tr.Kind {
	case Deposit:
		return r.ledger.Deposit(id, tr.Amount)
	case Withdraw:
		return r.ledger.Withdraw(id, tr.Amount)
	case Transfer:
		return r.ledger.Transfer(id, target, tr.Amount)
	case Freeze:
		return r.ledger.Freeze(id)
	case Unfreeze:
		return r.ledger.Unfreeze(id)
	case Close:
		return r.ledger.Close(id)
	}
	panic(fmt.Sprintf("harness: unexpected transition %v", tr.Kind))
}

// Check 比對帳本與模型的可觀察狀態：
// 每個帳戶的 ID、推導餘額、凍結與關閉旗標，以及所有餘額總和。
func (r *Runner) Check() error {
	accts := r.model.Accounts()
	if len(accts) != len(r.accounts) {
		return r.diverge(nil, "ledger has %d accounts, model has %d", len(r.accounts), len(accts))
	}
	var sum int64
	for i, want := range accts {
		id := r.accounts[i]
		if id != want.ID {
			return r.diverge(nil, "account at position %d: ledger id %d, model id %d", i, id, want.ID)
		}
		got, err := r.ledger.Balance(id)
		if err != nil {
			return r.diverge(err, "balance of account %d: %v", id, err)
		}
		if got != want.Balance {
			return r.diverge(nil, "balance mismatch on account %d: ledger %d, model %d", id, got, want.Balance)
		}
		acct, err := r.ledger.Get(id)
		if err != nil {
			return r.diverge(err, "status of account %d: %v", id, err)
		}
		if acct.Frozen != want.Frozen || acct.Closed != want.Closed {
			return r.diverge(nil, "status mismatch on account %d: ledger frozen=%t closed=%t, model frozen=%t closed=%t",
				id, acct.Frozen, acct.Closed, want.Frozen, want.Closed)
		}
		sum += got
	}
	if total := r.model.Total(); sum != total {
		return r.diverge(nil, "total mismatch: ledger %d, model %d", sum, total)
	}
	return nil
}

// Walk 執行 steps 步：每步產生 transition，未通過 Precondition 即丟棄重抽，
// 連續被拒達上限回傳 ErrTooManyRejections。
func (r *Runner) Walk(gen *Generator, src Source, steps int) error {
	for s := 0; s < steps; s++ {
		tr, err := r.next(gen, src)
		if err != nil {
			return err
		}
		if err := r.Apply(tr); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) next(gen *Generator, src Source) (Transition, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		tr := gen.Next(src)
		if r.Accepts(tr) {
			return tr, nil
		}
		r.rejected++
	}
	return Transition{}, fmt.Errorf("step %d: %w (%d attempts)", len(r.trace), ErrTooManyRejections, r.maxAttempts)
}

// Replay 以全新的帳本與模型重新執行 trs。
// 軌跡只記錄曾被接受的 transition，因此重播時出現 ErrRejected 亦視為失敗。
func Replay(trs []Transition, opts ...Option) error {
	r := NewRunner(opts...)
	for i, tr := range trs {
		if err := r.Apply(tr); err != nil {
			if errors.Is(err, ErrRejected) {
				return fmt.Errorf("replay step %d %s: %w", i, tr, err)
			}
			return err
		}
	}
	return nil
}

func (r *Runner) diverge(err error, format string, args ...any) error {
	e := &DivergenceError{
		Step:   len(r.trace) - 1,
		Reason: fmt.Sprintf(format, args...),
		Trace:  r.Trace(),
		Err:    err,
	}
	r.logger.Warn("divergence", zap.Int("step", e.Step), zap.String("reason", e.Reason))
	return e
}
