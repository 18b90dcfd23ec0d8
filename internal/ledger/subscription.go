package ledger

import (
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"go.uber.org/zap"
)

// feed binds one collection to the read-model field it replaces.
type feed struct {
	collection string
	apply      func(realtime.Snapshot)
	// ledger feeds change the balance.
	ledger bool
}

func (s *Session) feeds() []feed {
	return []feed{
		{collection: domain.CollectionProducts, apply: s.model.ReplaceProducts},
		{collection: domain.CollectionSales, apply: s.model.ReplaceSales, ledger: true},
		{collection: domain.CollectionStays, apply: s.model.ReplaceStays, ledger: true},
		{collection: domain.CollectionExpenses, apply: s.model.ReplaceExpenses, ledger: true},
	}
}

// subscribeAll opens one subscription per collection. On failure the
// subscriptions already opened are released.
func (s *Session) subscribeAll() ([]realtime.Unsubscribe, error) {
	subs := make([]realtime.Unsubscribe, 0, 4)
	for _, f := range s.feeds() {
		f := f
		unsub, err := s.backend.Subscribe(f.collection, func(snap realtime.Snapshot) {
			f.apply(snap)
			if f.ledger {
				s.refresh()
			}
		})
		if err != nil {
			zap.L().Error("ledger subscribe failed",
				zap.String("namespace", "ledger"),
				zap.String("collection", f.collection),
				zap.Error(err))
			for _, u := range subs {
				u()
			}
			return nil, err
		}
		subs = append(subs, unsub)
	}
	return subs, nil
}
