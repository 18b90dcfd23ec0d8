package ledger

import (
	"testing"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestReduceBalance(t *testing.T) {
	sales := []domain.Sale{{TotalCOP: 5000}}
	stays := []domain.Stay{{PriceCOP: 20000}}
	expenses := []domain.Expense{{AmountCOP: 3000}}

	b := ReduceBalance(sales, stays, expenses)
	assert.Equal(t, Balance{
		TotalSales:    5000,
		TotalStays:    20000,
		TotalIncome:   25000,
		TotalExpenses: 3000,
		NetBalance:    22000,
	}, b)
	assert.Equal(t, b, ReduceBalance(sales, stays, expenses))
}

func TestReduceBalanceEmpty(t *testing.T) {
	assert.Equal(t, Balance{}, ReduceBalance(nil, nil, nil))
	assert.Equal(t, Balance{}, ReduceBalance([]domain.Sale{}, []domain.Stay{}, []domain.Expense{}))
}

func TestReduceBalanceNegativeNet(t *testing.T) {
	b := ReduceBalance(nil, []domain.Stay{{PriceCOP: 1000}}, []domain.Expense{{AmountCOP: 1500}, {}})
	assert.Equal(t, int64(1000), b.TotalIncome)
	assert.Equal(t, int64(-500), b.NetBalance)
}
