// internal/bank/transaction.go
//
// 交易為不可變紀錄，只有三種型別：Deposit、Withdraw、Transfer。
// Transaction 介面以未匯出方法封閉，外部套件無法新增實作；
// Delta 以 type switch 逐一比對，新增型別時必須同步更新此處。

package bank

import "fmt"

// Transaction is one immutable entry of the ledger log.
type Transaction interface {
	isTransaction()
	fmt.Stringer
}

// Deposit 存入 To 帳戶。
type Deposit struct {
	To     AccountID
	Amount int64
}

// Withdraw 自 From 帳戶提出。
type Withdraw struct {
	From   AccountID
	Amount int64
}

// Transfer 自 From 轉入 To，兩者必不相同。
type Transfer struct {
	From   AccountID
	To     AccountID
	Amount int64
}

func (Deposit) isTransaction()  {}
func (Withdraw) isTransaction() {}
func (Transfer) isTransaction() {}

func (d Deposit) String() string  { return fmt.Sprintf("deposit(%d, %d)", d.To, d.Amount) }
func (w Withdraw) String() string { return fmt.Sprintf("withdraw(%d, %d)", w.From, w.Amount) }
func (t Transfer) String() string {
	return fmt.Sprintf("transfer(%d -> %d, %d)", t.From, t.To, t.Amount)
}

// Delta 回傳單筆交易對指定帳戶的有號貢獻：
//   - Deposit 至 id：+amount
//   - Withdraw 自 id：-amount
//   - Transfer 來源為 id：-amount；目標為 id：+amount
//
// 與 id 無關的交易貢獻為 0。
func Delta(tx Transaction, id AccountID) int64 {
	switch tx := tx.(type) {
	case Deposit:
		if tx.To == id {
			return tx.Amount
		}
	case Withdraw:
		if tx.From == id {
			return -tx.Amount
		}
	case Transfer:
		switch id {
		case tx.From:
			return -tx.Amount
		case tx.To:
			return tx.Amount
		}
	default:
		panic(fmt.Sprintf("bank: unknown transaction type %T", tx))
	}
	return 0
}

// Fold 對整段交易序列累加 id 的貢獻。
func Fold(txs []Transaction, id AccountID) int64 {
	var sum int64
	for _, tx := range txs {
		sum += Delta(tx, id)
	}
	return sum
}
