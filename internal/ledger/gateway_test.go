package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayRequiresIdentity(t *testing.T) {
	backend := newTestBackend(t)
	g := NewGateway(backend, NewReadModel())
	ctx := context.Background()

	_, err := g.SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 1})
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = g.SubmitProduct(ctx, ProductInput{Name: "Chao", PriceCOP: 100})
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.ErrorIs(t, g.ResetLedger(ctx, true), ErrAuthRequired)
	assert.ErrorIs(t, g.DeleteProduct(ctx, "x"), ErrAuthRequired)
	assert.Equal(t, int32(0), backend.writes.Load())

	g.Authenticate(testIdentity)
	g.Revoke()
	_, err = g.SubmitStay(ctx, StayInput{GuestName: "Ana", Rooms: 1})
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSubmitSaleRecomputesTotal(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	p, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Colgate pequeño", PriceCOP: 2500})
	require.NoError(t, err)

	sale, err := s.Gateway().SubmitSale(ctx, SaleInput{
		ProductID:    p.ID,
		UnitPriceCOP: int64p(2500),
		Quantity:     3,
		TotalCOP:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), sale.TotalCOP)
	assert.Equal(t, "Colgate pequeño", sale.ProductName)
	assert.Equal(t, testIdentity.UID, sale.CreatedBy)

	sales := s.Model().Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
	assert.Equal(t, int64(7500), sales[0].TotalCOP)
	assert.Positive(t, sales[0].At)
	assert.Equal(t, int64(7500), s.Balance().TotalIncome)
}

func TestSubmitSaleDefaultsUnitPrice(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	p, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Mamut", PriceCOP: 500})
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sale, err := s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 4, At: at})
	require.NoError(t, err)
	assert.Equal(t, int64(500), sale.UnitPriceCOP)
	assert.Equal(t, int64(2000), sale.TotalCOP)
	assert.Equal(t, domain.Millis(at), s.Model().Sales()[0].At)
}

func TestSubmitSaleValidation(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	p, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Chao", PriceCOP: 100})
	require.NoError(t, err)
	before := backend.writes.Load()

	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidReference)
	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 1, UnitPriceCOP: int64p(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before, backend.writes.Load())
}

func TestSubmitSaleRejectsOverflowingTotal(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	p, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Suite presidencial", PriceCOP: 1 << 40})
	require.NoError(t, err)
	before := backend.writes.Load()

	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 1 << 24})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 2, UnitPriceCOP: int64p(1 << 62)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before, backend.writes.Load())
	assert.Empty(t, s.Model().Sales())

	sale, err := s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1<<60), sale.TotalCOP)
}

func TestSubmitStay(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	day0 := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

	_, err := s.Gateway().SubmitStay(ctx, StayInput{GuestName: "Ana", Rooms: 1, CheckIn: day0, CheckOut: day0, PriceCOP: 1})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = s.Gateway().SubmitStay(ctx, StayInput{GuestName: "Ana", Rooms: 1, CheckIn: day0, CheckOut: day0.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	_, err = s.Gateway().SubmitStay(ctx, StayInput{GuestName: " ", Rooms: 1, CheckIn: day0, CheckOut: day0.Add(domain.Day)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Gateway().SubmitStay(ctx, StayInput{GuestName: "Ana", Rooms: 0, CheckIn: day0, CheckOut: day0.Add(domain.Day)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int32(0), backend.writes.Load())

	stay, err := s.Gateway().SubmitStay(ctx, StayInput{
		GuestName: "Ana",
		Rooms:     2,
		CheckIn:   day0,
		CheckOut:  day0.Add(36 * time.Hour),
		PriceCOP:  20000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stay.Nights)

	stays := s.Model().Stays()
	require.Len(t, stays, 1)
	assert.Equal(t, int64(2), stays[0].Nights)
	assert.Equal(t, domain.Millis(day0), stays[0].CheckIn)
	assert.Equal(t, int64(20000), s.Balance().TotalStays)
}

func TestSubmitExpense(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "", AmountCOP: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: -10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 3000, Notes: " pipeta "})
	require.NoError(t, err)
	expenses := s.Model().Expenses()
	require.Len(t, expenses, 1)
	assert.Equal(t, "pipeta", expenses[0].Notes)
	assert.Equal(t, int64(-3000), s.Balance().NetBalance)
}

func TestSubmitProductDuplicateName(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Agua brisa 600mL", PriceCOP: 2000})
	require.NoError(t, err)
	_, err = s.Gateway().SubmitProduct(ctx, ProductInput{Name: "agua brisa 600ml", PriceCOP: 2500})
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, s.Model().Products(), 1)

	_, err = s.Gateway().SubmitProduct(ctx, ProductInput{Name: "", PriceCOP: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Chao", PriceCOP: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDuplicateCheckIgnoresInactiveProducts(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	_, err := backend.Push(ctx, domain.CollectionProducts, map[string]interface{}{
		"name": "Choki", "priceCOP": 2000, "active": false,
	})
	require.NoError(t, err)

	_, err = s.Gateway().SubmitProduct(ctx, ProductInput{Name: "CHOKI", PriceCOP: 2100})
	assert.NoError(t, err)
}

func TestUpdateProduct(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Dorito", PriceCOP: 2800})
	require.NoError(t, err)
	_, err = s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Detodito", PriceCOP: 3000})
	require.NoError(t, err)
	created, ok := s.Model().Product(a.ID)
	require.True(t, ok)

	updated, err := s.Gateway().UpdateProduct(ctx, a.ID, ProductInput{Name: "DORITO", PriceCOP: 3200})
	require.NoError(t, err)
	assert.Equal(t, "DORITO", updated.Name)

	stored, ok := s.Model().Product(a.ID)
	require.True(t, ok)
	assert.Equal(t, int64(3200), stored.PriceCOP)
	assert.True(t, stored.Active)
	assert.Equal(t, created.CreatedAt, stored.CreatedAt)
	assert.GreaterOrEqual(t, stored.UpdatedAt, created.UpdatedAt)

	_, err = s.Gateway().UpdateProduct(ctx, a.ID, ProductInput{Name: "detodito", PriceCOP: 1})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = s.Gateway().UpdateProduct(ctx, "missing", ProductInput{Name: "X", PriceCOP: 1})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestDeleteProduct(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	p, err := s.Gateway().SubmitProduct(ctx, ProductInput{Name: "Pan de queso", PriceCOP: 1000})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Gateway().DeleteProduct(ctx, "missing"), ErrInvalidReference)
	require.NoError(t, s.Gateway().DeleteProduct(ctx, p.ID))
	_, ok := s.Model().Product(p.ID)
	assert.False(t, ok)

	_, err = s.Gateway().SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestResetLedger(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	g := s.Gateway()
	p, err := g.SubmitProduct(ctx, ProductInput{Name: "Chao", PriceCOP: 100})
	require.NoError(t, err)
	_, err = g.SubmitProduct(ctx, ProductInput{Name: "Mamut", PriceCOP: 500})
	require.NoError(t, err)
	_, err = g.SubmitSale(ctx, SaleInput{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	day0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = g.SubmitStay(ctx, StayInput{GuestName: "Ana", Rooms: 1, CheckIn: day0, CheckOut: day0.Add(domain.Day), PriceCOP: 5})
	require.NoError(t, err)
	_, err = g.SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 7})
	require.NoError(t, err)

	before := backend.writes.Load()
	assert.ErrorIs(t, g.ResetLedger(ctx, false), ErrInvalidInput)
	assert.Equal(t, before, backend.writes.Load())
	assert.Len(t, s.Model().Sales(), 1)

	require.NoError(t, g.ResetLedger(ctx, true))
	assert.Empty(t, s.Model().Sales())
	assert.Empty(t, s.Model().Stays())
	assert.Empty(t, s.Model().Expenses())
	assert.Len(t, s.Model().Products(), 2)
	assert.Equal(t, Balance{}, s.Balance())
}

func TestLenientSnapshotDecoding(t *testing.T) {
	s, backend := newTestSession(t)
	ctx := context.Background()
	_, err := backend.Push(ctx, domain.CollectionSales, map[string]interface{}{"totalCOP": "abc"})
	require.NoError(t, err)
	_, err = backend.Push(ctx, domain.CollectionSales, map[string]interface{}{"productName": "Chao"})
	require.NoError(t, err)
	_, err = backend.Push(ctx, domain.CollectionSales, map[string]interface{}{"totalCOP": 400, "at": realtime.ServerTimestamp})
	require.NoError(t, err)

	assert.Len(t, s.Model().Sales(), 3)
	assert.Equal(t, int64(400), s.Balance().TotalSales)
}

func TestBackendErrorsPassThrough(t *testing.T) {
	backend := newTestBackend(t)
	s := NewSession(backend, testIdentity, 0)
	require.NoError(t, s.Start())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
