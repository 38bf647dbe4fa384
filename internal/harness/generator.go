// internal/harness/generator.go

package harness

// Source 為隨機來源。*math/rand/v2.Rand 直接滿足此介面；
// 測試中則以 rapid 包裝，讓失敗案例可被縮減 (shrink)。
type Source interface {
	// IntN 回傳 [0, n) 的整數；n 必須 > 0。
	IntN(n int) int
	Uint64() uint64
}

// DefaultMaxAmount 為單筆金額上限。
// 較大的上限仍屬合法，但帳本與模型會以 BalanceOverflow 拒絕溢位的入帳或扣帳。
const DefaultMaxAmount int64 = 1_000_000_000

// Generator 產生候選 transition。產生過程不看任何狀態；
// 帳戶索引留待套用時解析，合法性則交由 Precondition 判斷。
type Generator struct {
	// MaxAmount 為金額上限，金額落在 [1, MaxAmount]。
	MaxAmount int64
	// Kinds 為可產生的類型；空值代表 AllKinds。
	Kinds []Kind
}

// NewGenerator 建立涵蓋所有類型的產生器。
func NewGenerator() *Generator {
	return &Generator{MaxAmount: DefaultMaxAmount}
}

// Next 隨機選擇類型並產生 transition。
func (g *Generator) Next(src Source) Transition {
	kinds := g.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	return g.Of(kinds[src.IntN(len(kinds))], src)
}

// Of 產生指定類型的 transition，依類型抽取所需參數。
func (g *Generator) Of(k Kind, src Source) Transition {
	tr := Transition{Kind: k}
	switch k {
	case Open:
		tr.AllowOverdraft = src.IntN(2) == 1
	case Deposit, Withdraw:
		tr.Account = Index(src.Uint64())
		tr.Amount = g.amount(src)
	case Transfer:
		tr.Account = Index(src.Uint64())
		tr.Target = Index(src.Uint64())
		tr.Amount = g.amount(src)
	case Freeze, Unfreeze, Close:
		tr.Account = Index(src.Uint64())
	}
	return tr
}

func (g *Generator) amount(src Source) int64 {
	max := g.MaxAmount
	if max <= 0 {
		max = DefaultMaxAmount
	}
	return 1 + int64(src.IntN(int(max)))
}
