package ledger

import (
	"context"
	"sync"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const DefaultSeedWorkers = 4

// DefaultProducts is the front desk catalogue written into an empty store.
var DefaultProducts = []domain.Product{
	{Name: "Agua brisa 600mL", PriceCOP: 2000},
	{Name: "Agua cristal 300mL", PriceCOP: 800},
	{Name: "Arranca muela", PriceCOP: 200},
	{Name: "Chao", PriceCOP: 100},
	{Name: "Choki", PriceCOP: 2000},
	{Name: "Coca cola 1.5L", PriceCOP: 7000},
	{Name: "Coca cola 400ml", PriceCOP: 3000},
	{Name: "Cola roman 1.5L", PriceCOP: 5000},
	{Name: "Colgate pequeño", PriceCOP: 2500},
	{Name: "Desodorante balan", PriceCOP: 1500},
	{Name: "Detodito", PriceCOP: 3000},
	{Name: "Dorito", PriceCOP: 2800},
	{Name: "Jugo del valle 1.5L", PriceCOP: 5000},
	{Name: "Mamut", PriceCOP: 500},
	{Name: "Manimoto cronch", PriceCOP: 1800},
	{Name: "Maní moto salado", PriceCOP: 1200},
	{Name: "Margaritas", PriceCOP: 2800},
	{Name: "Pan aliñado (500)", PriceCOP: 500},
	{Name: "Pan aliñado (1000)", PriceCOP: 1000},
	{Name: "Pan de queso", PriceCOP: 1000},
	{Name: "Savital acondicionador", PriceCOP: 1500},
	{Name: "Savital shampo", PriceCOP: 1500},
	{Name: "Sepillo de diente", PriceCOP: 2000},
	{Name: "Súper coco", PriceCOP: 200},
}

// SeedDefaults writes DefaultProducts into backend if its products
// collection is empty. It is used outside a session, at startup.
func SeedDefaults(ctx context.Context, backend Backend, workers int) (int, error) {
	var count int
	unsub, err := backend.Subscribe(domain.CollectionProducts, func(snap realtime.Snapshot) {
		count = snap.Len()
	})
	if err != nil {
		return 0, err
	}
	unsub()
	if count > 0 {
		return 0, nil
	}
	return seedProducts(ctx, backend, workers)
}

func seedProducts(ctx context.Context, backend Backend, workers int) (int, error) {
	if workers <= 0 {
		workers = DefaultSeedWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		seeded   int
		firstErr error
	)
	for _, p := range DefaultProducts {
		p := p
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			_, err := backend.Push(ctx, domain.CollectionProducts, map[string]interface{}{
				"name":      p.Name,
				"priceCOP":  p.PriceCOP,
				"active":    true,
				"createdAt": realtime.ServerTimestamp,
				"updatedAt": realtime.ServerTimestamp,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			seeded++
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	zap.L().Info("default products seeded",
		zap.String("namespace", "ledger"),
		zap.Int("count", seeded))
	return seeded, firstErr
}
