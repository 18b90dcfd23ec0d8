package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	NodeId   int64  `yaml:"node_id"` // snowflake node used for document keys
}

// WebConfig WEB config
type WebConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// LogConfig Log config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AuthConfig operator session settings
type AuthConfig struct {
	TokenIssuer     string `yaml:"token_issuer"`
	TokenExpireHour int    `yaml:"token_expire_hour"`
	AllowRegister   bool   `yaml:"allow_register"`
}

// LedgerConfig live ledger settings
type LedgerConfig struct {
	Backend         string `yaml:"backend"` // gorm | bolt
	BoltFile        string `yaml:"bolt_file"`
	DetailLimit     int    `yaml:"detail_limit"`
	SeedProducts    bool   `yaml:"seed_products"`
	SeedWorkers     int    `yaml:"seed_workers"`
	BalanceSchedule string `yaml:"balance_schedule"` // cron spec of the balance snapshot job
}

// MailConfig balance report mail, disabled when Enabled is false
type MailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	User     string   `yaml:"user"`
	Passwd   string   `yaml:"passwd"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Schedule string   `yaml:"schedule"` // cron spec of the report job
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Auth     AuthConfig   `yaml:"auth"`
	Ledger   LedgerConfig `yaml:"ledger"`
	Mail     MailConfig   `yaml:"mail"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetBackupDir() string {
	return path.Join(c.System.Workdir, "backup")
}

// UsesDefaultSecret reports whether tokens are signed with the shipped secret.
func (c *AppConfig) UsesDefaultSecret() bool {
	return c.Web.Secret == DefaultAppConfig.Web.Secret
}

func (c *AppConfig) GetBoltFile() string {
	if c.Ledger.BoltFile != "" {
		return c.Ledger.BoltFile
	}
	return path.Join(c.GetDataDir(), "ledger.db")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o700)
	_ = os.MkdirAll(c.GetDataDir(), 0o700)
	_ = os.MkdirAll(c.GetBackupDir(), 0o700)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		*val = p
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToIntE(evalue)
	if err == nil {
		*val = p
	}
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "HotelLedger",
		Location: "America/Bogota",
		Workdir:  "/var/hotelledger",
		Debug:    true,
		NodeId:   1,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-0731-4b2d-8c1f-hotelledger",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "hotelledger",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/hotelledger/hotelledger.log",
	},
	Auth: AuthConfig{
		TokenIssuer:     "hotelledger",
		TokenExpireHour: 12,
		AllowRegister:   true,
	},
	Ledger: LedgerConfig{
		Backend:         "gorm",
		DetailLimit:     10,
		SeedProducts:    true,
		SeedWorkers:     4,
		BalanceSchedule: "@every 5m",
	},
	Mail: MailConfig{
		Enabled:  false,
		Port:     587,
		Schedule: "0 22 * * *",
	},
}

// LoadConfig reads cfile (or the first default location found) and applies
// HOTELLEDGER_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	// In the production environment, the configuration file is read first.
	if cfile == "" {
		cfile = "hotelledger.yml"
	}
	if !fileExists(cfile) {
		cfile = "/etc/hotelledger.yml"
	}
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(data, cfg)
		if err != nil {
			panic(err)
		}
	}

	applyEnv(cfg)
	cfg.Ledger.Backend = strings.ToLower(strings.TrimSpace(cfg.Ledger.Backend))
	if cfg.Ledger.DetailLimit <= 0 {
		cfg.Ledger.DetailLimit = DefaultAppConfig.Ledger.DetailLimit
	}
	cfg.initDirs()
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("HOTELLEDGER_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("HOTELLEDGER_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("HOTELLEDGER_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvInt64Value("HOTELLEDGER_SYSTEM_NODE_ID", &cfg.System.NodeId)

	// WEB
	setEnvValue("HOTELLEDGER_WEB_HOST", &cfg.Web.Host)
	setEnvValue("HOTELLEDGER_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("HOTELLEDGER_WEB_PORT", &cfg.Web.Port)

	// DB
	setEnvValue("HOTELLEDGER_DB_TYPE", &cfg.Database.Type)
	setEnvValue("HOTELLEDGER_DB_HOST", &cfg.Database.Host)
	setEnvValue("HOTELLEDGER_DB_NAME", &cfg.Database.Name)
	setEnvValue("HOTELLEDGER_DB_USER", &cfg.Database.User)
	setEnvValue("HOTELLEDGER_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("HOTELLEDGER_DB_PORT", &cfg.Database.Port)
	setEnvBoolValue("HOTELLEDGER_DB_DEBUG", &cfg.Database.Debug)

	// LOGGER
	setEnvValue("HOTELLEDGER_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvValue("HOTELLEDGER_LOGGER_FILENAME", &cfg.Logger.Filename)
	setEnvBoolValue("HOTELLEDGER_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	// AUTH
	setEnvValue("HOTELLEDGER_AUTH_TOKEN_ISSUER", &cfg.Auth.TokenIssuer)
	setEnvIntValue("HOTELLEDGER_AUTH_TOKEN_EXPIRE_HOUR", &cfg.Auth.TokenExpireHour)
	setEnvBoolValue("HOTELLEDGER_AUTH_ALLOW_REGISTER", &cfg.Auth.AllowRegister)

	// LEDGER
	setEnvValue("HOTELLEDGER_LEDGER_BACKEND", &cfg.Ledger.Backend)
	setEnvValue("HOTELLEDGER_LEDGER_BOLT_FILE", &cfg.Ledger.BoltFile)
	setEnvIntValue("HOTELLEDGER_LEDGER_DETAIL_LIMIT", &cfg.Ledger.DetailLimit)
	setEnvBoolValue("HOTELLEDGER_LEDGER_SEED_PRODUCTS", &cfg.Ledger.SeedProducts)
	setEnvIntValue("HOTELLEDGER_LEDGER_SEED_WORKERS", &cfg.Ledger.SeedWorkers)
	setEnvValue("HOTELLEDGER_LEDGER_BALANCE_SCHEDULE", &cfg.Ledger.BalanceSchedule)

	// MAIL
	setEnvBoolValue("HOTELLEDGER_MAIL_ENABLED", &cfg.Mail.Enabled)
	setEnvValue("HOTELLEDGER_MAIL_HOST", &cfg.Mail.Host)
	setEnvIntValue("HOTELLEDGER_MAIL_PORT", &cfg.Mail.Port)
	setEnvValue("HOTELLEDGER_MAIL_USER", &cfg.Mail.User)
	setEnvValue("HOTELLEDGER_MAIL_PWD", &cfg.Mail.Passwd)
	setEnvValue("HOTELLEDGER_MAIL_FROM", &cfg.Mail.From)
	if to := os.Getenv("HOTELLEDGER_MAIL_TO"); to != "" {
		cfg.Mail.To = strings.Split(to, ",")
	}
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
