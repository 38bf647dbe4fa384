// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account 狀態結構，不含任何餘額欄位：餘額一律由交易 log 推導。

package bank

// AccountID 為帳戶識別碼，自 0 起嚴格遞增，關閉後亦不重複使用。
type AccountID uint64

// Account represents the status of a bank account.
type Account struct {
	ID             AccountID `json:"id"`
	AllowOverdraft bool      `json:"allow_overdraft"`
	Frozen         bool      `json:"frozen"`
	Closed         bool      `json:"closed"`
}
