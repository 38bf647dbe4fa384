// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 所有錯誤皆以 sentinel 形式提供，呼叫端一律以 errors.Is 判斷；
// Bank 在回傳時會以 fmt.Errorf("%w") 附上操作與帳戶資訊。

package bank

import "errors"

var (
	// ErrAccountNotFound 代表帳戶 ID 從未由 Open 發出。
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountClosed 代表對已關閉帳戶進行變更操作。
	ErrAccountClosed = errors.New("account closed")

	// ErrAccountFrozen 代表對凍結中帳戶進行影響餘額的操作。
	ErrAccountFrozen = errors.New("account frozen")

	// ErrInsufficientFunds 代表提款或轉出會讓不允許透支的帳戶餘額變為負數。
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransfer 代表轉帳來源與目標帳戶相同。
	ErrInvalidTransfer = errors.New("from and to are same")

	// ErrBadAmount 代表金額非法（<= 0）。
	ErrBadAmount = errors.New("amount must be > 0")

	// ErrBalanceOverflow 代表入帳或扣帳後的推導餘額會超出 int64 範圍。
	ErrBalanceOverflow = errors.New("balance would overflow")
)

// kinds 依序列出錯誤分類名稱，供 Kind 查表。
var kinds = []struct {
	err  error
	name string
}{
	{ErrAccountNotFound, "AccountNotFound"},
	{ErrAccountClosed, "AccountClosed"},
	{ErrAccountFrozen, "AccountFrozen"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrInvalidTransfer, "InvalidTransfer"},
	{ErrBadAmount, "BadAmount"},
	{ErrBalanceOverflow, "BalanceOverflow"},
}

// Kind 回傳錯誤所屬的分類名稱；nil 回傳 "OK"，無法辨識者回傳 "Unknown"。
// 用於日誌與失敗軌跡的比對輸出。
func Kind(err error) string {
	if err == nil {
		return "OK"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
