package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/config"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/identity"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/ledger"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/realtime"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/common"
	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	store     LedgerStore
	identity  *identity.Service
	sessions  *ledger.Sessions
	monitor   *ledger.Session
	authUnsub func()

	mailSender gomail.Sender // nil dials the configured SMTP server
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ IdentityProvider  = (*Application)(nil)
	_ SessionsProvider  = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// OverrideMailSender replaces the SMTP dialer used by the balance report.
func (a *Application) OverrideMailSender(s gomail.Sender) {
	a.mailSender = s
}

func (a *Application) Store() LedgerStore {
	return a.store
}

func (a *Application) Identity() *identity.Service {
	return a.identity
}

func (a *Application) Sessions() *ledger.Sessions {
	return a.sessions
}

// Monitor is the read-only ledger view used by jobs and the status page.
func (a *Application) Monitor() *ledger.Session {
	return a.monitor
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		zapConfig.OutputPaths = []string{"stdout"}
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	if cfg.UsesDefaultSecret() {
		zap.S().Warn("web.secret is the default value, set HOTELLEDGER_WEB_SECRET before exposing the server")
	}

	if err := common.SetNodeId(cfg.System.NodeId); err != nil {
		zap.S().Warnf("invalid snowflake node id %d: %v", cfg.System.NodeId, err)
	}

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if a.gormDB == nil {
		a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir)
		if err != nil {
			return err
		}
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.store, err = openStore(cfg, a.gormDB)
	if err != nil {
		return err
	}
	zap.S().Infof("Ledger store ready, backend: %s", cfg.Ledger.Backend)

	tokens := identity.NewTokenManager(cfg.Web.Secret, cfg.Auth.TokenIssuer,
		time.Duration(cfg.Auth.TokenExpireHour)*time.Hour)
	a.identity = identity.NewService(a.gormDB, tokens, identity.Options{
		AllowRegister: cfg.Auth.AllowRegister,
	})

	a.sessions = ledger.NewSessions(a.store, ledger.SessionOptions{
		DetailLimit:  cfg.Ledger.DetailLimit,
		SeedProducts: cfg.Ledger.SeedProducts,
		SeedWorkers:  cfg.Ledger.SeedWorkers,
	})
	a.authUnsub, err = a.identity.OnAuthStateChanged(a.onAuthState)
	if err != nil {
		return err
	}

	a.monitor = ledger.NewObserver(a.store, cfg.Ledger.DetailLimit)
	if err := a.monitor.Start(); err != nil {
		return err
	}
	if err := a.store.Hub().OnChange(a.onCollectionChanged); err != nil {
		return err
	}

	a.checkSuper()
	a.checkProducts()

	a.initJob()
	return nil
}

func (a *Application) onAuthState(st identity.State) {
	if st.User == nil {
		a.sessions.Apply(context.Background(), st.UID, nil)
		return
	}
	a.sessions.Apply(context.Background(), st.UID, &ledger.Identity{
		UID:         st.User.UID,
		Email:       st.User.Email,
		DisplayName: st.User.DisplayName,
	})
}

func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(path.Join(workdir, "data", cfg.Name+".db"))
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	return db, nil
}

func openStore(cfg *config.AppConfig, db *gorm.DB) (LedgerStore, error) {
	switch cfg.Ledger.Backend {
	case "", "gorm":
		return realtime.NewGormStore(db), nil
	case "bolt":
		store, err := realtime.OpenBoltStore(cfg.GetBoltFile())
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, errors.Errorf("unsupported ledger backend %q", cfg.Ledger.Backend)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		return a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...)
	}
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// LogOperation appends an entry to the operator log.
func (a *Application) LogOperation(ctx context.Context, oprName, ip, action, desc string) {
	err := a.gormDB.WithContext(ctx).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   oprName,
		OprIp:     ip,
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
	if err != nil {
		zap.L().Error("write operation log failed",
			zap.String("namespace", "app"),
			zap.String("action", action),
			zap.Error(err))
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.authUnsub != nil {
		a.authUnsub()
	}
	if a.sessions != nil {
		a.sessions.CloseAll()
	}
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
