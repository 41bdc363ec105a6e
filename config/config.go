package config

import (
	"flag"
	"os"
	"strconv"
	"sync"
)

const (
	defaultServerAddress     = ":8080"
	defaultDatabaseDSN       = ""
	defaultLogLevel          = "debug"
	defaultAppEnv            = "production"
	defaultCarrier           = "dpd"
	defaultB2BScoreThreshold = 50
	defaultLowStockThreshold = 50
	defaultDHLBaseURL        = "https://api.dhl.com"
	defaultDPDBaseURL        = "https://public-ws-stage.dpd.com"
	defaultSnapshotDir       = "snapshots"
	defaultAlertTarget       = "owner"

	// development-only signing key, override with AUTH_TOKEN_KEY
	defaultAuthTokenKey = "9c1185a5c5e9fc54612808977ee8f548"
)

type Config struct {
	ServerAddr  string
	DatabaseDSN string
	LogLevel    string

	// AppEnv gates the webhook signature bypass: verification is
	// skipped only when AppEnv is exactly "development".
	AppEnv string

	AuthTokenKey string

	StripeSecretKey     string
	StripeWebhookSecret string

	DefaultCarrier string
	DHLAPIKey      string
	DHLBaseURL     string
	DPDDelisID     string
	DPDPassword    string
	DPDBaseURL     string

	// RegistryBaseURL and OSINTBaseURL point the business verification
	// clients at their sources; empty means the built-in offline fallback.
	RegistryBaseURL string
	OSINTBaseURL    string

	RedisAddr string

	B2BScoreThreshold int
	LowStockThreshold int
	SnapshotDir       string
	AlertTarget       string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "database DSN")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
		flag.StringVar(&cfg.AppEnv, "e", defaultAppEnv, "application environment")
		flag.StringVar(&cfg.DefaultCarrier, "c", defaultCarrier, "default shipping carrier")

		flag.Parse()

		cfg.DHLBaseURL = defaultDHLBaseURL
		cfg.DPDBaseURL = defaultDPDBaseURL
		cfg.B2BScoreThreshold = defaultB2BScoreThreshold
		cfg.LowStockThreshold = defaultLowStockThreshold
		cfg.SnapshotDir = defaultSnapshotDir
		cfg.AlertTarget = defaultAlertTarget
		cfg.AuthTokenKey = defaultAuthTokenKey

		// if environment variable is set, then using it
		if v := os.Getenv("RUN_ADDRESS"); v != "" {
			cfg.ServerAddr = v
		}
		if v := os.Getenv("DATABASE_URI"); v != "" {
			cfg.DatabaseDSN = v
		}
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			cfg.LogLevel = v
		}
		if v := os.Getenv("APP_ENV"); v != "" {
			cfg.AppEnv = v
		}
		if v := os.Getenv("AUTH_TOKEN_KEY"); v != "" {
			cfg.AuthTokenKey = v
		}
		if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
			cfg.StripeSecretKey = v
		}
		if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
			cfg.StripeWebhookSecret = v
		}
		if v := os.Getenv("DEFAULT_CARRIER"); v != "" {
			cfg.DefaultCarrier = v
		}
		if v := os.Getenv("DHL_API_KEY"); v != "" {
			cfg.DHLAPIKey = v
		}
		if v := os.Getenv("DHL_BASE_URL"); v != "" {
			cfg.DHLBaseURL = v
		}
		if v := os.Getenv("DPD_DELIS_ID"); v != "" {
			cfg.DPDDelisID = v
		}
		if v := os.Getenv("DPD_PASSWORD"); v != "" {
			cfg.DPDPassword = v
		}
		if v := os.Getenv("DPD_BASE_URL"); v != "" {
			cfg.DPDBaseURL = v
		}
		if v := os.Getenv("REGISTRY_BASE_URL"); v != "" {
			cfg.RegistryBaseURL = v
		}
		if v := os.Getenv("OSINT_BASE_URL"); v != "" {
			cfg.OSINTBaseURL = v
		}
		if v := os.Getenv("REDIS_ADDR"); v != "" {
			cfg.RedisAddr = v
		}
		if v := os.Getenv("B2B_SCORE_THRESHOLD"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.B2BScoreThreshold = n
			}
		}
		if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.LowStockThreshold = n
			}
		}
		if v := os.Getenv("SNAPSHOT_DIR"); v != "" {
			cfg.SnapshotDir = v
		}
		if v := os.Getenv("ALERT_TARGET"); v != "" {
			cfg.AlertTarget = v
		}

		singleton = &cfg
	})

	return singleton, nil
}
