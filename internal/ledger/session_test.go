package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionInitialState(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()
	_, err := backend.Push(ctx, domain.CollectionStays, map[string]interface{}{"priceCOP": 20000})
	require.NoError(t, err)

	s := NewSession(backend, testIdentity, 0)
	assert.False(t, s.Connected())
	require.NoError(t, s.Start())
	defer s.Close()

	assert.True(t, s.Connected())
	assert.Equal(t, int64(20000), s.Balance().TotalIncome)
	assert.Equal(t, testIdentity, s.Identity())
}

func TestSessionStartAfterClose(t *testing.T) {
	backend := newTestBackend(t)
	s := NewSession(backend, testIdentity, 0)
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Close()

	assert.ErrorIs(t, s.Start(), ErrSessionClosed)
	assert.False(t, s.Connected())
	_, err := s.Gateway().SubmitExpense(context.Background(), ExpenseInput{Concept: "Gas", AmountCOP: 1})
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSessionResubscribeHasNoStaleCallbacks(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()

	first := NewSession(backend, testIdentity, 0)
	require.NoError(t, first.Start())
	var firstCalls int
	first.OnChange(func(Balance) { firstCalls++ })
	first.Close()
	first.Close()
	assert.False(t, first.Connected())

	second := NewSession(backend, testIdentity, 0)
	require.NoError(t, second.Start())
	defer second.Close()
	var mu sync.Mutex
	var secondCalls int
	second.OnChange(func(Balance) {
		mu.Lock()
		secondCalls++
		mu.Unlock()
	})

	_, err := backend.Push(ctx, domain.CollectionExpenses, map[string]interface{}{"amountCOP": 3000})
	require.NoError(t, err)

	assert.Equal(t, 0, firstCalls)
	assert.Equal(t, Balance{}, first.Balance())
	assert.Empty(t, first.Model().Expenses())
	mu.Lock()
	assert.Equal(t, 1, secondCalls)
	mu.Unlock()
	assert.Equal(t, int64(3000), second.Balance().TotalExpenses)

	_, err = first.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 1})
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestSessionDetailVisibility(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	_, ok := s.Detail()
	assert.False(t, ok)

	_, err := s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 3000})
	require.NoError(t, err)
	_, ok = s.Detail()
	assert.False(t, ok)

	s.SetDetailVisible(true)
	d, ok := s.Detail()
	require.True(t, ok)
	require.Len(t, d.Expenses.Lines, 1)
	assert.Equal(t, NoRecords, d.Sales.Placeholder)

	_, err = s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Luz", AmountCOP: 1000})
	require.NoError(t, err)
	d, ok = s.Detail()
	require.True(t, ok)
	require.Len(t, d.Expenses.Lines, 2)
	assert.Equal(t, "Luz", d.Expenses.Lines[0].Title)

	s.SetDetailVisible(false)
	assert.False(t, s.DetailVisible())
	_, ok = s.Detail()
	assert.False(t, ok)
}

func TestSessionOnChangeUnsubscribe(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	var got []Balance
	stop := s.OnChange(func(b Balance) { got = append(got, b) })
	_, err := s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 10})
	require.NoError(t, err)
	stop()
	stop()
	_, err = s.Gateway().SubmitExpense(ctx, ExpenseInput{Concept: "Gas", AmountCOP: 10})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].TotalExpenses)
}

func TestSessionsRegistry(t *testing.T) {
	backend := newTestBackend(t)
	ctx := context.Background()
	reg := NewSessions(backend, SessionOptions{SeedProducts: true, SeedWorkers: 2})
	defer reg.CloseAll()

	s1, err := reg.Open(ctx, testIdentity)
	require.NoError(t, err)
	assert.Len(t, s1.Model().Products(), len(DefaultProducts))

	s2, err := reg.Open(ctx, testIdentity)
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	other := Identity{UID: "uid-2", Email: "noche@angelina.co"}
	reg.Apply(ctx, other.UID, &other)
	assert.Equal(t, 2, reg.Len())
	s3, ok := reg.Get(other.UID)
	require.True(t, ok)
	assert.Len(t, s3.Model().Products(), len(DefaultProducts))

	reg.Apply(ctx, other.UID, nil)
	_, ok = reg.Get(other.UID)
	assert.False(t, ok)
	assert.False(t, s3.Connected())
	assert.Equal(t, 1, reg.Len())
}

func TestObserverIsReadOnly(t *testing.T) {
	backend := newTestBackend(t)
	obs := NewObserver(backend, 3)
	require.NoError(t, obs.Start())
	defer obs.Close()

	_, err := obs.Gateway().SubmitExpense(context.Background(), ExpenseInput{Concept: "Gas", AmountCOP: 1})
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = backend.Push(context.Background(), domain.CollectionExpenses, map[string]interface{}{"amountCOP": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(9), obs.Balance().TotalExpenses)
}
