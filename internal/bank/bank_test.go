// internal/bank/bank_test.go
//
// 本檔為 Bank 模組的單元測試。
// 覆蓋：開戶 ID 遞增、存提款、轉帳守恆、透支閘門、凍結、關戶與 log 推導。
// 所有測試皆為 in-memory 執行。

package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// balance 為小工具：取出餘額，失敗即終止測試。
func balance(t *testing.T, b *Bank, id AccountID) int64 {
	t.Helper()
	bal, err := b.Balance(id)
	require.NoError(t, err, "Balance(%d)", id)
	return bal
}

// TestOpenIssuesIncreasingIDs 驗證 ID 自 0 起嚴格遞增，關戶後不重用。
func TestOpenIssuesIncreasingIDs(t *testing.T) {
	b := NewBank()
	for want := AccountID(0); want < 5; want++ {
		require.Equal(t, want, b.Open(want%2 == 0))
	}
	require.NoError(t, b.Close(4))
	require.Equal(t, AccountID(5), b.Open(false))

	all := b.List()
	require.Len(t, all, 6)
	assert.True(t, all[0].AllowOverdraft)
	assert.False(t, all[1].AllowOverdraft)
	assert.True(t, all[4].Closed)
}

// TestDepositWithdraw 測試存提款的正常路徑與錯誤條件。
func TestDepositWithdraw(t *testing.T) {
	b := NewBank()
	a := b.Open(false)

	require.NoError(t, b.Deposit(a, 100))
	require.NoError(t, b.Withdraw(a, 30))
	require.Equal(t, int64(70), balance(t, b, a))

	// 錯誤金額
	require.ErrorIs(t, b.Deposit(a, 0), ErrBadAmount)
	require.ErrorIs(t, b.Withdraw(a, -1), ErrBadAmount)

	// 不存在的帳戶
	require.ErrorIs(t, b.Deposit(9, 1), ErrAccountNotFound)
	require.ErrorIs(t, b.Withdraw(9, 1), ErrAccountNotFound)
	_, err := b.Balance(9)
	require.ErrorIs(t, err, ErrAccountNotFound)

	// 餘額不足：失敗的操作不追加交易
	n := b.Len()
	require.ErrorIs(t, b.Withdraw(a, 71), ErrInsufficientFunds)
	require.Equal(t, n, b.Len())
	require.Equal(t, int64(70), balance(t, b, a))
}

// TestTransferScenario 對應範例情境：
// open → deposit(0, 100) → open → transfer(0, 1, 40) → 60 / 40。
func TestTransferScenario(t *testing.T) {
	b := NewBank()
	a0 := b.Open(false)
	require.NoError(t, b.Deposit(a0, 100))
	a1 := b.Open(false)
	require.NoError(t, b.Transfer(a0, a1, 40))

	require.Equal(t, int64(60), balance(t, b, a0))
	require.Equal(t, int64(40), balance(t, b, a1))
}

// TestTransferErrors 驗證轉帳錯誤分類與檢查順序。
func TestTransferErrors(t *testing.T) {
	b := NewBank()
	a0 := b.Open(false)
	a1 := b.Open(false)
	require.NoError(t, b.Deposit(a0, 10))

	require.ErrorIs(t, b.Transfer(a0, a0, 1), ErrInvalidTransfer)
	require.ErrorIs(t, b.Transfer(a0, 7, 1), ErrAccountNotFound)
	require.ErrorIs(t, b.Transfer(7, a0, 1), ErrAccountNotFound)
	require.ErrorIs(t, b.Transfer(a0, a1, 0), ErrBadAmount)
	require.ErrorIs(t, b.Transfer(a0, a1, 11), ErrInsufficientFunds)

	// 目標凍結與來源餘額不足同時成立時，以目標帳戶狀態為先
	require.NoError(t, b.Freeze(a1))
	require.ErrorIs(t, b.Transfer(a0, a1, 11), ErrAccountFrozen)

	require.NoError(t, b.Close(a1))
	require.ErrorIs(t, b.Transfer(a0, a1, 1), ErrAccountClosed)
	require.ErrorIs(t, b.Transfer(a1, a0, 1), ErrAccountClosed)

	require.Equal(t, 1, b.Len())
}

// TestOverdraftGate 驗證 allowOverdraft 的兩種設定。
func TestOverdraftGate(t *testing.T) {
	b := NewBank()
	strict := b.Open(false)
	loose := b.Open(true)

	// 範例情境：open(false) → withdraw(0, 1) → InsufficientFunds，餘額仍為 0
	require.ErrorIs(t, b.Withdraw(strict, 1), ErrInsufficientFunds)
	require.Equal(t, int64(0), balance(t, b, strict))

	require.NoError(t, b.Withdraw(loose, 25))
	require.Equal(t, int64(-25), balance(t, b, loose))

	// 透支帳戶可轉出至負值，對方收到完整金額
	require.NoError(t, b.Transfer(loose, strict, 5))
	require.Equal(t, int64(-30), balance(t, b, loose))
	require.Equal(t, int64(5), balance(t, b, strict))
	require.ErrorIs(t, b.Transfer(strict, loose, 6), ErrInsufficientFunds)
}

// TestBalanceOverflow 驗證入帳與扣帳皆不會讓推導餘額溢位，被拒時不追加交易。
func TestBalanceOverflow(t *testing.T) {
	b := NewBank()
	a := b.Open(false)
	loose := b.Open(true)

	require.NoError(t, b.Deposit(a, math.MaxInt64))
	n := b.Len()
	require.ErrorIs(t, b.Deposit(a, 1), ErrBalanceOverflow)
	require.Equal(t, n, b.Len())
	require.Equal(t, int64(math.MaxInt64), balance(t, b, a))

	// 轉入方溢位：來源餘額足夠，仍整筆拒絕
	require.NoError(t, b.Deposit(loose, 1))
	require.ErrorIs(t, b.Transfer(loose, a, 1), ErrBalanceOverflow)
	require.Equal(t, int64(1), balance(t, b, loose))

	// 透支帳戶扣帳下限
	require.NoError(t, b.Withdraw(loose, 1))
	require.NoError(t, b.Withdraw(loose, math.MaxInt64))
	require.NoError(t, b.Withdraw(loose, 1))
	require.Equal(t, int64(math.MinInt64), balance(t, b, loose))
	require.ErrorIs(t, b.Withdraw(loose, 1), ErrBalanceOverflow)
	require.ErrorIs(t, b.Transfer(loose, b.Open(false), 1), ErrBalanceOverflow)
	require.Equal(t, int64(math.MinInt64), balance(t, b, loose))
	require.Equal(t, int64(math.MaxInt64), balance(t, b, a))
	assert.Equal(t, "BalanceOverflow", Kind(b.Deposit(a, 1)))
}

// TestFreezeScenario 對應範例情境：凍結中存款失敗，解凍後恢復。
func TestFreezeScenario(t *testing.T) {
	b := NewBank()
	a := b.Open(false)

	require.NoError(t, b.Freeze(a))
	require.ErrorIs(t, b.Deposit(a, 10), ErrAccountFrozen)
	require.ErrorIs(t, b.Withdraw(a, 10), ErrAccountFrozen)
	require.NoError(t, b.Freeze(a), "freeze is idempotent")

	require.NoError(t, b.Unfreeze(a))
	require.NoError(t, b.Deposit(a, 10))
	require.Equal(t, int64(10), balance(t, b, a))
	require.NoError(t, b.Unfreeze(a), "unfreeze is idempotent")

	require.ErrorIs(t, b.Freeze(3), ErrAccountNotFound)
	require.ErrorIs(t, b.Unfreeze(3), ErrAccountNotFound)
}

// TestClosedAccountImmutable 驗證關戶後所有變更皆失敗，但餘額可查且不變。
func TestClosedAccountImmutable(t *testing.T) {
	b := NewBank()
	a := b.Open(true)
	other := b.Open(true)
	require.NoError(t, b.Deposit(a, 42))
	require.NoError(t, b.Freeze(a))
	require.NoError(t, b.Close(a), "frozen accounts can be closed")

	before := b.Len()
	require.ErrorIs(t, b.Deposit(a, 1), ErrAccountClosed)
	require.ErrorIs(t, b.Withdraw(a, 1), ErrAccountClosed)
	require.ErrorIs(t, b.Transfer(a, other, 1), ErrAccountClosed)
	require.ErrorIs(t, b.Transfer(other, a, 1), ErrAccountClosed)
	require.ErrorIs(t, b.Freeze(a), ErrAccountClosed)
	require.ErrorIs(t, b.Unfreeze(a), ErrAccountClosed)
	require.ErrorIs(t, b.Close(a), ErrAccountClosed)
	require.Equal(t, before, b.Len())

	require.Equal(t, int64(42), balance(t, b, a))
	acct, err := b.Get(a)
	require.NoError(t, err)
	assert.True(t, acct.Closed)
	assert.True(t, acct.Frozen, "failed unfreeze must not clear the flag")
}

// TestKind 驗證錯誤分類名稱在包裝後仍可辨識。
func TestKind(t *testing.T) {
	b := NewBank()
	assert.Equal(t, "OK", Kind(nil))
	assert.Equal(t, "AccountNotFound", Kind(b.Deposit(1, 1)))
	a := b.Open(false)
	assert.Equal(t, "InsufficientFunds", Kind(b.Withdraw(a, 1)))
	assert.Equal(t, "InvalidTransfer", Kind(b.Transfer(a, a, 1)))
	assert.Equal(t, "BadAmount", Kind(b.Deposit(a, 0)))
}

// TestDelta 驗證各交易型別對帳戶的有號貢獻。
func TestDelta(t *testing.T) {
	cases := []struct {
		tx   Transaction
		id   AccountID
		want int64
	}{
		{Deposit{To: 1, Amount: 5}, 1, 5},
		{Deposit{To: 1, Amount: 5}, 2, 0},
		{Withdraw{From: 1, Amount: 5}, 1, -5},
		{Transfer{From: 1, To: 2, Amount: 5}, 1, -5},
		{Transfer{From: 1, To: 2, Amount: 5}, 2, 5},
		{Transfer{From: 1, To: 2, Amount: 5}, 3, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Delta(c.tx, c.id), "%v on %d", c.tx, c.id)
	}
}

// TestBalanceIsFoldOfLog 以隨機操作序列驗證：
//   - Balance 等於對 Transactions() 的獨立加總；
//   - 轉帳不改變兩方餘額總和；
//   - 不允許透支的帳戶餘額永不為負。
func TestBalanceIsFoldOfLog(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewBank()
		n := rapid.IntRange(1, 4).Draw(t, "accounts")
		for i := 0; i < n; i++ {
			b.Open(rapid.Bool().Draw(t, "overdraft"))
		}
		idGen := rapid.Uint64Range(0, uint64(n-1))
		amtGen := rapid.Int64Range(1, 1000)

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			id := AccountID(idGen.Draw(t, "id"))
			amt := amtGen.Draw(t, "amount")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = b.Deposit(id, amt)
			case 1:
				_ = b.Withdraw(id, amt)
			case 2:
				to := AccountID(idGen.Draw(t, "to"))
				before := mustBalance(t, b, id) + mustBalance(t, b, to)
				err := b.Transfer(id, to, amt)
				after := mustBalance(t, b, id) + mustBalance(t, b, to)
				if err == nil && before != after {
					t.Fatalf("transfer %d->%d changed sum %d -> %d", id, to, before, after)
				}
			}
		}

		txs := b.Transactions()
		for _, a := range b.List() {
			want := int64(0)
			for _, tx := range txs {
				switch tx := tx.(type) {
				case Deposit:
					if tx.To == a.ID {
						want += tx.Amount
					}
				case Withdraw:
					if tx.From == a.ID {
						want -= tx.Amount
					}
				case Transfer:
					if tx.From == a.ID {
						want -= tx.Amount
					}
					if tx.To == a.ID {
						want += tx.Amount
					}
				}
			}
			got := mustBalance(t, b, a.ID)
			if got != want {
				t.Fatalf("account %d: balance %d, log sum %d", a.ID, got, want)
			}
			if !a.AllowOverdraft && got < 0 {
				t.Fatalf("account %d without overdraft went negative: %d", a.ID, got)
			}
		}
	})
}

func mustBalance(t *rapid.T, b *Bank, id AccountID) int64 {
	bal, err := b.Balance(id)
	if err != nil {
		t.Fatalf("Balance(%d): %v", id, err)
	}
	return bal
}
