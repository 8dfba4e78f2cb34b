package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	SECStreamURL         string        `env:"SEC_STREAM_URL,default=wss://stream.sec-api.io"`
	SECAPIBaseURL        string        `env:"SEC_API_BASE_URL,default=https://api.sec-api.io"`
	SECAPIKey            string        `env:"SEC_API_KEY,required"`
	SECAPITimeout        time.Duration `env:"SEC_API_TIMEOUT,default=15s"`
	StreamReadTimeout    time.Duration `env:"SEC_STREAM_READ_TIMEOUT,default=0s"`
	StreamReconnectDelay time.Duration `env:"SEC_STREAM_RECONNECT_DELAY,default=5s"`
	FilingFetchDelay     time.Duration `env:"FILING_FETCH_DELAY,default=15s"`

	QuotesBaseURL string        `env:"QUOTES_BASE_URL,required"`
	QuotesTimeout time.Duration `env:"QUOTES_TIMEOUT,default=10s"`

	EmailBaseURL string        `env:"EMAIL_BASE_URL,default=https://api.resend.com"`
	EmailAPIKey  string        `env:"EMAIL_API_KEY,required"`
	EmailFrom    string        `env:"EMAIL_FROM,required"`
	EmailTimeout time.Duration `env:"EMAIL_TIMEOUT,default=10s"`

	SMSBaseURL             string        `env:"SMS_BASE_URL,default=https://api.twilio.com"`
	SMSAccountSID          string        `env:"SMS_ACCOUNT_SID,required"`
	SMSAuthToken           string        `env:"SMS_AUTH_TOKEN,required"`
	SMSMessagingServiceSID string        `env:"SMS_MESSAGING_SERVICE_SID,required"`
	SMSTimeout             time.Duration `env:"SMS_TIMEOUT,default=10s"`

	// TaxonomyPath overrides the embedded categorical mapping. Leave empty
	// to use the built-in table.
	TaxonomyPath string `env:"TAXONOMY_PATH"`

	RematchInterval      time.Duration `env:"REMATCH_INTERVAL,default=1h"`
	ReturnsInterval      time.Duration `env:"RETURNS_INTERVAL,default=24h"`
	DailyDigestInterval  time.Duration `env:"DAILY_DIGEST_INTERVAL,default=24h"`
	WeeklyReportInterval time.Duration `env:"WEEKLY_REPORT_INTERVAL,default=168h"`

	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
