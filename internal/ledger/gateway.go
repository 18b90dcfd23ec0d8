package ledger

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SaleInput struct {
	ProductID string
	// UnitPriceCOP defaults to the product's current price when nil.
	UnitPriceCOP *int64
	Quantity     int64
	// TotalCOP is the caller's total. It is recomputed and only used to
	// report a mismatch.
	TotalCOP int64
	At       time.Time
}

type StayInput struct {
	GuestName string
	Rooms     int64
	CheckIn   time.Time
	CheckOut  time.Time
	PriceCOP  int64
	At        time.Time
}

type ExpenseInput struct {
	Concept   string
	AmountCOP int64
	Notes     string
	At        time.Time
}

type ProductInput struct {
	Name     string
	PriceCOP int64
}

// Gateway validates mutations against the read-model and writes them to the
// backend. Every check runs before the first store call; store errors are
// returned unchanged.
type Gateway struct {
	backend     Backend
	model       *ReadModel
	ident       atomic.Pointer[Identity]
	seedWorkers int
}

func NewGateway(backend Backend, model *ReadModel) *Gateway {
	return &Gateway{backend: backend, model: model, seedWorkers: DefaultSeedWorkers}
}

// Authenticate binds the identity written as createdBy.
func (g *Gateway) Authenticate(ident Identity) {
	g.ident.Store(&ident)
}

// Revoke makes every later mutation fail with ErrAuthRequired.
func (g *Gateway) Revoke() {
	g.ident.Store(nil)
}

func (g *Gateway) identity() (Identity, error) {
	ident := g.ident.Load()
	if ident == nil || ident.UID == "" {
		return Identity{}, ErrAuthRequired
	}
	return *ident, nil
}

// atValue returns the stored timestamp for t, deferring to the store clock
// when t is zero.
func atValue(t time.Time) interface{} {
	if t.IsZero() {
		return realtime.ServerTimestamp
	}
	return domain.Millis(t)
}

func docPath(collection, key string) string {
	return collection + "/" + key
}

func (g *Gateway) SubmitSale(ctx context.Context, in SaleInput) (domain.Sale, error) {
	ident, err := g.identity()
	if err != nil {
		return domain.Sale{}, err
	}
	product, ok := g.model.Product(in.ProductID)
	if !ok {
		return domain.Sale{}, errors.Wrapf(ErrInvalidReference, "product %q", in.ProductID)
	}
	if in.Quantity <= 0 {
		return domain.Sale{}, invalidInput("quantity must be positive")
	}
	unit := product.PriceCOP
	if in.UnitPriceCOP != nil {
		unit = *in.UnitPriceCOP
	}
	if unit < 0 {
		return domain.Sale{}, invalidInput("unit price must not be negative")
	}
	total := unit * in.Quantity
	if unit != 0 && total/unit != in.Quantity {
		return domain.Sale{}, invalidInput("total overflows")
	}

	sale := domain.Sale{
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPriceCOP: unit,
		Quantity:     in.Quantity,
		TotalCOP:     total,
		CreatedBy:    ident.UID,
	}
	if in.TotalCOP != 0 && in.TotalCOP != sale.TotalCOP {
		zap.L().Warn("sale total recomputed",
			zap.String("namespace", "ledger"),
			zap.String("product", product.ID),
			zap.Int64("submitted", in.TotalCOP),
			zap.Int64("computed", sale.TotalCOP))
	}
	doc := sale.Document()
	doc["at"] = atValue(in.At)
	if !in.At.IsZero() {
		sale.At = domain.Millis(in.At)
	}

	key, err := g.backend.Push(ctx, domain.CollectionSales, doc)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.ID = key
	return sale, nil
}

func (g *Gateway) SubmitStay(ctx context.Context, in StayInput) (domain.Stay, error) {
	ident, err := g.identity()
	if err != nil {
		return domain.Stay{}, err
	}
	name := strings.TrimSpace(in.GuestName)
	switch {
	case name == "":
		return domain.Stay{}, invalidInput("guest name is required")
	case in.Rooms <= 0:
		return domain.Stay{}, invalidInput("rooms must be positive")
	case in.PriceCOP < 0:
		return domain.Stay{}, invalidInput("price must not be negative")
	case in.CheckIn.IsZero() || in.CheckOut.IsZero():
		return domain.Stay{}, invalidInput("check-in and check-out are required")
	case !in.CheckOut.After(in.CheckIn):
		return domain.Stay{}, errors.Wrapf(ErrInvalidDateRange, "%s -> %s",
			in.CheckIn.Format(time.RFC3339), in.CheckOut.Format(time.RFC3339))
	}

	stay := domain.Stay{
		GuestName: name,
		Rooms:     in.Rooms,
		CheckIn:   domain.Millis(in.CheckIn),
		CheckOut:  domain.Millis(in.CheckOut),
		PriceCOP:  in.PriceCOP,
		Nights:    domain.Nights(in.CheckIn, in.CheckOut),
		CreatedBy: ident.UID,
	}
	doc := stay.Document()
	doc["at"] = atValue(in.At)
	if !in.At.IsZero() {
		stay.At = domain.Millis(in.At)
	}

	key, err := g.backend.Push(ctx, domain.CollectionStays, doc)
	if err != nil {
		return domain.Stay{}, err
	}
	stay.ID = key
	return stay, nil
}

func (g *Gateway) SubmitExpense(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	ident, err := g.identity()
	if err != nil {
		return domain.Expense{}, err
	}
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return domain.Expense{}, invalidInput("concept is required")
	}
	if in.AmountCOP < 0 {
		return domain.Expense{}, invalidInput("amount must not be negative")
	}

	expense := domain.Expense{
		Concept:   concept,
		AmountCOP: in.AmountCOP,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedBy: ident.UID,
	}
	doc := expense.Document()
	doc["at"] = atValue(in.At)
	if !in.At.IsZero() {
		expense.At = domain.Millis(in.At)
	}

	key, err := g.backend.Push(ctx, domain.CollectionExpenses, doc)
	if err != nil {
		return domain.Expense{}, err
	}
	expense.ID = key
	return expense, nil
}

func (g *Gateway) checkProduct(in ProductInput, exceptID string) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", invalidInput("product name is required")
	}
	if in.PriceCOP < 0 {
		return "", invalidInput("price must not be negative")
	}
	if id, ok := g.model.findActiveByName(name, exceptID); ok {
		return "", errors.Wrapf(ErrDuplicateName, "%q collides with product %s", name, id)
	}
	return name, nil
}

// SubmitProduct creates an active product.
func (g *Gateway) SubmitProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if _, err := g.identity(); err != nil {
		return domain.Product{}, err
	}
	name, err := g.checkProduct(in, "")
	if err != nil {
		return domain.Product{}, err
	}
	key, err := g.backend.Push(ctx, domain.CollectionProducts, map[string]interface{}{
		"name":      name,
		"priceCOP":  in.PriceCOP,
		"active":    true,
		"createdAt": realtime.ServerTimestamp,
		"updatedAt": realtime.ServerTimestamp,
	})
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: key, Name: name, PriceCOP: in.PriceCOP, Active: true}, nil
}

// UpdateProduct rewrites name and price of an existing product, keeping
// its active flag and creation time.
func (g *Gateway) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if _, err := g.identity(); err != nil {
		return domain.Product{}, err
	}
	current, ok := g.model.Product(id)
	if !ok {
		return domain.Product{}, errors.Wrapf(ErrInvalidReference, "product %q", id)
	}
	name, err := g.checkProduct(in, id)
	if err != nil {
		return domain.Product{}, err
	}
	err = g.backend.Set(ctx, docPath(domain.CollectionProducts, id), map[string]interface{}{
		"name":      name,
		"priceCOP":  in.PriceCOP,
		"active":    current.Active,
		"createdAt": current.CreatedAt,
		"updatedAt": realtime.ServerTimestamp,
	})
	if err != nil {
		return domain.Product{}, err
	}
	current.Name = name
	current.PriceCOP = in.PriceCOP
	return current, nil
}

// DeleteProduct removes a product document. Past sales keep their copy of
// the product name.
func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	if _, err := g.identity(); err != nil {
		return err
	}
	if _, ok := g.model.Product(id); !ok {
		return errors.Wrapf(ErrInvalidReference, "product %q", id)
	}
	return g.backend.Remove(ctx, docPath(domain.CollectionProducts, id))
}

// ResetLedger removes every sale, stay and expense. Products are kept.
// Nothing is removed unless confirmed is true.
func (g *Gateway) ResetLedger(ctx context.Context, confirmed bool) error {
	if _, err := g.identity(); err != nil {
		return err
	}
	if !confirmed {
		return invalidInput("reset must be confirmed")
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, collection := range domain.LedgerCollections {
		collection := collection
		eg.Go(func() error {
			return g.backend.Remove(ctx, collection)
		})
	}
	return eg.Wait()
}

// SeedProducts writes the default catalogue when the products collection
// is empty. It returns the number of products written.
func (g *Gateway) SeedProducts(ctx context.Context) (int, error) {
	if _, err := g.identity(); err != nil {
		return 0, err
	}
	if len(g.model.Products()) > 0 {
		return 0, nil
	}
	return seedProducts(ctx, g.backend, g.seedWorkers)
}
