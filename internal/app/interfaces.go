package app

import (
	"context"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/config"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/identity"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LedgerStore is a realtime store together with its change hub.
type LedgerStore interface {
	realtime.Store
	Hub() *realtime.Hub
}

var (
	_ LedgerStore = (*realtime.GormStore)(nil)
	_ LedgerStore = (*realtime.BoltStore)(nil)
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// StoreProvider provides the ledger document store
type StoreProvider interface {
	Store() LedgerStore
}

// IdentityProvider provides operator authentication
type IdentityProvider interface {
	Identity() *identity.Service
}

// SessionsProvider provides the live ledger sessions
type SessionsProvider interface {
	Sessions() *ledger.Sessions
	Monitor() *ledger.Session
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	StoreProvider
	IdentityProvider
	SessionsProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// LogOperation appends an entry to the operator log
	LogOperation(ctx context.Context, oprName, ip, action, desc string)
}
