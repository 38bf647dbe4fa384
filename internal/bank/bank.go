// internal/bank/bank.go

// Package bank 定義核心商業邏輯：開戶、存款、提款、轉帳、凍結、關戶與餘額查詢。
// 帳本為 append-only 的交易 log；餘額不儲存，查詢時以 Fold 由 log 推導。
// Bank 僅供單一呼叫端循序使用，不含任何鎖。
package bank

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Bank 為聚合根 (Aggregate Root)：
// - log：依序追加的交易紀錄，為餘額唯一來源。
// - accts：以 AccountID 為索引的帳戶狀態（ID 連續自 0 起，故以切片保存）。
type Bank struct {
	log    []Transaction
	accts  []Account
	logger *zap.Logger
}

// Option 設定 Bank 的可選參數。
type Option func(*Bank)

// WithLogger 指定記錄被拒操作用的 logger。
func WithLogger(l *zap.Logger) Option {
	return func(b *Bank) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBank 建立空白帳本。
func NewBank(opts ...Option) *Bank {
	b := &Bank{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open 開立新帳戶並回傳下一個 ID；永遠成功。
// allowOverdraft 於開戶時決定，之後不可變更。
func (b *Bank) Open(allowOverdraft bool) AccountID {
	id := AccountID(len(b.accts))
	b.accts = append(b.accts, Account{ID: id, AllowOverdraft: allowOverdraft})
	return id
}

// Get 依 ID 取得帳戶狀態的值拷貝；若不存在回傳 ErrAccountNotFound。
func (b *Bank) Get(id AccountID) (*Account, error) {
	a, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

// List 依 ID 順序回傳所有帳戶（含已關閉者）的拷貝。
func (b *Bank) List() []*Account {
	out := make([]*Account, 0, len(b.accts))
	for _, a := range b.accts {
		cp := a
		out = append(out, &cp)
	}
	return out
}

// Deposit 存款：帳戶須存在、未關閉、未凍結，且入帳後餘額不得溢位。
func (b *Bank) Deposit(id AccountID, amt int64) error {
	if err := b.checkDeposit(id, amt); err != nil {
		return b.reject("deposit", err, zap.Uint64("account", uint64(id)), zap.Int64("amount", amt))
	}
	b.log = append(b.log, Deposit{To: id, Amount: amt})
	return nil
}

func (b *Bank) checkDeposit(id AccountID, amt int64) error {
	if amt <= 0 {
		return ErrBadAmount
	}
	if _, err := b.mutable(id); err != nil {
		return err
	}
	return b.checkCredit(id, amt)
}

// Withdraw 提款：除 Deposit 的條件外，不允許透支的帳戶提款後推導餘額不得為負。
func (b *Bank) Withdraw(id AccountID, amt int64) error {
	if err := b.checkWithdraw(id, amt); err != nil {
		return b.reject("withdraw", err, zap.Uint64("account", uint64(id)), zap.Int64("amount", amt))
	}
	b.log = append(b.log, Withdraw{From: id, Amount: amt})
	return nil
}

func (b *Bank) checkWithdraw(id AccountID, amt int64) error {
	if amt <= 0 {
		return ErrBadAmount
	}
	a, err := b.mutable(id)
	if err != nil {
		return err
	}
	return b.checkFunds(a, amt)
}

// Transfer 轉帳：檢查順序為 金額 → 同帳戶 → 來源帳戶 → 目標帳戶 → 來源餘額 → 目標入帳溢位。
// 任一步驟失敗皆不追加交易。
func (b *Bank) Transfer(fromID, toID AccountID, amt int64) error {
	if err := b.checkTransfer(fromID, toID, amt); err != nil {
		return b.reject("transfer", err,
			zap.Uint64("from", uint64(fromID)), zap.Uint64("to", uint64(toID)), zap.Int64("amount", amt))
	}
	b.log = append(b.log, Transfer{From: fromID, To: toID, Amount: amt})
	return nil
}

func (b *Bank) checkTransfer(fromID, toID AccountID, amt int64) error {
	if amt <= 0 {
		return ErrBadAmount
	}
	if fromID == toID {
		return ErrInvalidTransfer
	}
	from, err := b.mutable(fromID)
	if err != nil {
		return err
	}
	if _, err := b.mutable(toID); err != nil {
		return err
	}
	if err := b.checkFunds(from, amt); err != nil {
		return err
	}
	return b.checkCredit(toID, amt)
}

// Freeze 凍結帳戶；已凍結者重複凍結視為成功。
func (b *Bank) Freeze(id AccountID) error {
	return b.setFrozen("freeze", id, true)
}

// Unfreeze 解除凍結；未凍結者視為成功。
func (b *Bank) Unfreeze(id AccountID) error {
	return b.setFrozen("unfreeze", id, false)
}

func (b *Bank) setFrozen(op string, id AccountID, frozen bool) error {
	a, err := b.active(id)
	if err != nil {
		return b.reject(op, err, zap.Uint64("account", uint64(id)))
	}
	a.Frozen = frozen
	return nil
}

// Close 關閉帳戶。凍結中或餘額非零皆可關閉；關閉後餘額仍可查詢。
func (b *Bank) Close(id AccountID) error {
	a, err := b.active(id)
	if err != nil {
		return b.reject("close", err, zap.Uint64("account", uint64(id)))
	}
	a.Closed = true
	return nil
}

// Balance 以完整交易 log 推導帳戶餘額；已關閉帳戶亦可查詢。
func (b *Bank) Balance(id AccountID) (int64, error) {
	if _, err := b.lookup(id); err != nil {
		return 0, fmt.Errorf("balance %d: %w", id, err)
	}
	return Fold(b.log, id), nil
}

// Transactions 回傳交易 log 的拷貝，供稽核或重新推導使用。
func (b *Bank) Transactions() []Transaction {
	out := make([]Transaction, len(b.log))
	copy(out, b.log)
	return out
}

// Len 回傳目前交易筆數。
func (b *Bank) Len() int {
	return len(b.log)
}

func (b *Bank) lookup(id AccountID) (*Account, error) {
	if uint64(id) >= uint64(len(b.accts)) {
		return nil, ErrAccountNotFound
	}
	return &b.accts[id], nil
}

// active 取得存在且未關閉的帳戶。
func (b *Bank) active(id AccountID) (*Account, error) {
	a, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	if a.Closed {
		return nil, ErrAccountClosed
	}
	return a, nil
}

// mutable 取得可進行餘額異動的帳戶（存在、未關閉、未凍結）。
func (b *Bank) mutable(id AccountID) (*Account, error) {
	a, err := b.active(id)
	if err != nil {
		return nil, err
	}
	if a.Frozen {
		return nil, ErrAccountFrozen
	}
	return a, nil
}

// checkFunds 檢查扣除 amt（> 0）後的餘額：不允許透支者不得為負，
// 允許透支者不得低於 math.MinInt64。
func (b *Bank) checkFunds(a *Account, amt int64) error {
	bal := Fold(b.log, a.ID)
	if !a.AllowOverdraft && bal < amt {
		return ErrInsufficientFunds
	}
	if bal < math.MinInt64+amt {
		return ErrBalanceOverflow
	}
	return nil
}

// checkCredit 檢查入帳 amt（> 0）後的餘額不超過 math.MaxInt64。
func (b *Bank) checkCredit(id AccountID, amt int64) error {
	if Fold(b.log, id) > math.MaxInt64-amt {
		return ErrBalanceOverflow
	}
	return nil
}

func (b *Bank) reject(op string, err error, fields ...zap.Field) error {
	b.logger.Debug(op+" rejected", append(fields, zap.String("kind", Kind(err)))...)
	return fmt.Errorf("%s: %w", op, err)
}
