// internal/model/model.go

// Package model 實作差異測試用的參考模型（oracle）。
// 與 bank.Bank 不同，這裡每個帳戶直接保存餘額，以算術直接更新，不保留任何交易 log；
// 兩種表示法對同一語意各自實作，任一邊的錯誤都會造成比對差異。
//
// 所有操作以「位置」（帳戶在開戶順序中的索引）指定帳戶，
// 並依與 bank 相同的檢查順序預測應回傳的錯誤；預測失敗時不變更任何狀態。
package model

import (
	"fmt"
	"math"

	"eventbank/internal/bank"
)

// Account 為模擬帳戶，與正式程式碼相反，直接持有餘額。
type Account struct {
	ID             bank.AccountID
	Balance        int64
	AllowOverdraft bool
	Frozen         bool
	Closed         bool
}

// Bank 為簡化的模擬銀行。
type Bank struct {
	accounts []Account
	nextID   bank.AccountID
}

// New 建立空白模型。
func New() *Bank {
	return &Bank{}
}

// Clone 回傳深拷貝，供需要不可變狀態的測試框架使用。
func (m *Bank) Clone() *Bank {
	cp := &Bank{nextID: m.nextID, accounts: make([]Account, len(m.accounts))}
	copy(cp.accounts, m.accounts)
	return cp
}

// Len 回傳已開立帳戶數（含已關閉者）。
func (m *Bank) Len() int {
	return len(m.accounts)
}

// Account 回傳第 i 個帳戶的拷貝。
func (m *Bank) Account(i int) Account {
	return m.accounts[i]
}

// Accounts 回傳所有帳戶的拷貝。
func (m *Bank) Accounts() []Account {
	out := make([]Account, len(m.accounts))
	copy(out, m.accounts)
	return out
}

// Total 回傳所有帳戶餘額總和。
func (m *Bank) Total() int64 {
	var sum int64
	for _, a := range m.accounts {
		sum += a.Balance
	}
	return sum
}

// Open 以下一個 ID 開立餘額為 0 的帳戶。
func (m *Bank) Open(allowOverdraft bool) bank.AccountID {
	id := m.nextID
	m.accounts = append(m.accounts, Account{ID: id, AllowOverdraft: allowOverdraft})
	m.nextID++
	return id
}

// Deposit 存入 amt 至第 i 個帳戶。
func (m *Bank) Deposit(i int, amt int64) error {
	if amt <= 0 {
		return bank.ErrBadAmount
	}
	a, err := m.mutable(i)
	if err != nil {
		return err
	}
	if !a.CanCredit(amt) {
		return bank.ErrBalanceOverflow
	}
	a.Balance += amt
	return nil
}

// Withdraw 自第 i 個帳戶提出 amt。
func (m *Bank) Withdraw(i int, amt int64) error {
	if amt <= 0 {
		return bank.ErrBadAmount
	}
	a, err := m.mutable(i)
	if err != nil {
		return err
	}
	if !a.CanCover(amt) {
		return bank.ErrInsufficientFunds
	}
	if !a.CanDebit(amt) {
		return bank.ErrBalanceOverflow
	}
	a.Balance -= amt
	return nil
}

// Transfer 以位置 i、j 指定來源與目標。
// 同帳戶的判斷依 ID 而非位置。
func (m *Bank) Transfer(i, j int, amt int64) error {
	if amt <= 0 {
		return bank.ErrBadAmount
	}
	from, err := m.at(i)
	if err != nil {
		return err
	}
	to, err := m.at(j)
	if err != nil {
		return err
	}
	if from.ID == to.ID {
		return bank.ErrInvalidTransfer
	}
	if err := from.mutable(); err != nil {
		return err
	}
	if err := to.mutable(); err != nil {
		return err
	}
	if !from.CanCover(amt) {
		return bank.ErrInsufficientFunds
	}
	if !from.CanDebit(amt) || !to.CanCredit(amt) {
		return bank.ErrBalanceOverflow
	}
	from.Balance -= amt
	to.Balance += amt
	return nil
}

// Freeze 凍結第 i 個帳戶；重複凍結視為成功。
func (m *Bank) Freeze(i int) error {
	return m.setFrozen(i, true)
}

// Unfreeze 解除第 i 個帳戶的凍結。
func (m *Bank) Unfreeze(i int) error {
	return m.setFrozen(i, false)
}

func (m *Bank) setFrozen(i int, frozen bool) error {
	a, err := m.at(i)
	if err != nil {
		return err
	}
	if a.Closed {
		return bank.ErrAccountClosed
	}
	a.Frozen = frozen
	return nil
}

// Close 關閉第 i 個帳戶；餘額保留。
func (m *Bank) Close(i int) error {
	a, err := m.at(i)
	if err != nil {
		return err
	}
	if a.Closed {
		return bank.ErrAccountClosed
	}
	a.Closed = true
	return nil
}

// CanCover 回傳扣除 amt 後是否符合透支規則。
func (a *Account) CanCover(amt int64) bool {
	return a.AllowOverdraft || a.Balance >= amt
}

// CanDebit 回傳扣除 amt（> 0）後餘額是否仍不低於 math.MinInt64。
func (a *Account) CanDebit(amt int64) bool {
	return a.Balance >= math.MinInt64+amt
}

// CanCredit 回傳存入 amt（> 0）後餘額是否仍不超過 math.MaxInt64。
func (a *Account) CanCredit(amt int64) bool {
	return a.Balance <= math.MaxInt64-amt
}

// Mutable 回傳帳戶目前是否接受影響餘額的操作。
func (a *Account) Mutable() bool {
	return a.mutable() == nil
}

func (a *Account) mutable() error {
	switch {
	case a.Closed:
		return bank.ErrAccountClosed
	case a.Frozen:
		return bank.ErrAccountFrozen
	}
	return nil
}

func (m *Bank) at(i int) (*Account, error) {
	if i < 0 || i >= len(m.accounts) {
		return nil, fmt.Errorf("position %d of %d: %w", i, len(m.accounts), bank.ErrAccountNotFound)
	}
	return &m.accounts[i], nil
}

func (m *Bank) mutable(i int) (*Account, error) {
	a, err := m.at(i)
	if err != nil {
		return nil, err
	}
	if err := a.mutable(); err != nil {
		return nil, err
	}
	return a, nil
}
