package ledger

import "github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"

// Balance is the income/expense summary of the ledger in COP.
type Balance struct {
	TotalSales    int64 `json:"totalSales"`
	TotalStays    int64 `json:"totalStays"`
	TotalIncome   int64 `json:"totalIncome"`
	TotalExpenses int64 `json:"totalExpenses"`
	NetBalance    int64 `json:"netBalance"`
}

// ReduceBalance sums the ledger. Missing amounts were decoded as 0 and
// count as such.
func ReduceBalance(sales []domain.Sale, stays []domain.Stay, expenses []domain.Expense) Balance {
	var b Balance
	for _, s := range sales {
		b.TotalSales += s.TotalCOP
	}
	for _, s := range stays {
		b.TotalStays += s.PriceCOP
	}
	for _, e := range expenses {
		b.TotalExpenses += e.AmountCOP
	}
	b.TotalIncome = b.TotalSales + b.TotalStays
	b.NetBalance = b.TotalIncome - b.TotalExpenses
	return b
}
