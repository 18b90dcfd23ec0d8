package ledger

import (
	"sort"
	"sync/atomic"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"go.uber.org/zap"
)

type productSet struct {
	list []domain.Product
	byID map[string]domain.Product
}

// ReadModel is the local copy of the four collections. Each field has a
// single writer, its subscription callback, which replaces it wholesale.
// Readers always see a complete snapshot of a field, never a partial one.
type ReadModel struct {
	products atomic.Pointer[productSet]
	sales    atomic.Pointer[[]domain.Sale]
	stays    atomic.Pointer[[]domain.Stay]
	expenses atomic.Pointer[[]domain.Expense]
}

func NewReadModel() *ReadModel {
	m := &ReadModel{}
	m.products.Store(&productSet{byID: map[string]domain.Product{}})
	m.sales.Store(&[]domain.Sale{})
	m.stays.Store(&[]domain.Stay{})
	m.expenses.Store(&[]domain.Expense{})
	return m
}

func logSkipped(collection string, err error) {
	zap.L().Warn("skip malformed document",
		zap.String("namespace", "ledger"),
		zap.String("collection", collection),
		zap.Error(err))
}

func (m *ReadModel) ReplaceProducts(snap realtime.Snapshot) {
	set := &productSet{
		list: make([]domain.Product, 0, snap.Len()),
		byID: make(map[string]domain.Product, snap.Len()),
	}
	for _, e := range snap.Entries {
		p, err := domain.DecodeProduct(e.Key, e.Value)
		if err != nil {
			logSkipped(domain.CollectionProducts, err)
			continue
		}
		set.list = append(set.list, p)
		set.byID[p.ID] = p
	}
	m.products.Store(set)
}

func (m *ReadModel) ReplaceSales(snap realtime.Snapshot) {
	items := make([]domain.Sale, 0, snap.Len())
	for _, e := range snap.Entries {
		s, err := domain.DecodeSale(e.Key, e.Value)
		if err != nil {
			logSkipped(domain.CollectionSales, err)
			continue
		}
		items = append(items, s)
	}
	m.sales.Store(&items)
}

func (m *ReadModel) ReplaceStays(snap realtime.Snapshot) {
	items := make([]domain.Stay, 0, snap.Len())
	for _, e := range snap.Entries {
		s, err := domain.DecodeStay(e.Key, e.Value)
		if err != nil {
			logSkipped(domain.CollectionStays, err)
			continue
		}
		items = append(items, s)
	}
	m.stays.Store(&items)
}

func (m *ReadModel) ReplaceExpenses(snap realtime.Snapshot) {
	items := make([]domain.Expense, 0, snap.Len())
	for _, e := range snap.Entries {
		x, err := domain.DecodeExpense(e.Key, e.Value)
		if err != nil {
			logSkipped(domain.CollectionExpenses, err)
			continue
		}
		items = append(items, x)
	}
	m.expenses.Store(&items)
}

// Product looks up a product by id.
func (m *ReadModel) Product(id string) (domain.Product, bool) {
	p, ok := m.products.Load().byID[id]
	return p, ok
}

// Products returns the products in arrival order. The slice must not be modified.
func (m *ReadModel) Products() []domain.Product {
	return m.products.Load().list
}

// ProductsByName returns a sorted copy of the products.
func (m *ReadModel) ProductsByName() []domain.Product {
	src := m.Products()
	out := make([]domain.Product, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NormalizedName() < out[j].NormalizedName()
	})
	return out
}

func (m *ReadModel) Sales() []domain.Sale {
	return *m.sales.Load()
}

func (m *ReadModel) Stays() []domain.Stay {
	return *m.stays.Load()
}

func (m *ReadModel) Expenses() []domain.Expense {
	return *m.expenses.Load()
}

// findActiveByName returns the id of an active product whose name matches
// name case-insensitively, ignoring exceptID.
func (m *ReadModel) findActiveByName(name, exceptID string) (string, bool) {
	want := domain.NormalizeName(name)
	for _, p := range m.Products() {
		if p.ID == exceptID || !p.Active {
			continue
		}
		if p.NormalizedName() == want {
			return p.ID, true
		}
	}
	return "", false
}
