package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramChatID      int64  `env:"TELEGRAM_CHAT_ID,required"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=30"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	DexscreenerBaseURL string        `env:"DEXSCREENER_BASE_URL,default=https://api.dexscreener.com/latest"`
	DexscreenerTimeout time.Duration `env:"DEXSCREENER_TIMEOUT,default=30s"`
	RugcheckBaseURL    string        `env:"RUGCHECK_BASE_URL,default=https://api.rugcheck.xyz/v1"`
	RugcheckTimeout    time.Duration `env:"RUGCHECK_TIMEOUT,default=30s"`

	SupportedChains []string `env:"SUPPORTED_CHAINS,default=solana,bsc,ethereum"`

	MaxMarketCapUSD  float64       `env:"MAX_MARKET_CAP_USD,default=5000000"`
	MinMarketCapUSD  float64       `env:"MIN_MARKET_CAP_USD,default=10000"`
	MinTokenAge      time.Duration `env:"MIN_TOKEN_AGE,default=1m"`
	MaxTaxPct        float64       `env:"MAX_TAX_PCT,default=10"`
	MinLiquidityUSD  float64       `env:"MIN_LIQUIDITY_USD,default=100"`
	MinVolume24hUSD  float64       `env:"MIN_VOLUME_24H_USD,default=50"`
	MinUniqueBuys1h  int           `env:"MIN_UNIQUE_BUYS_1H,default=0"`
	BuySellRatioMax  float64       `env:"BUY_SELL_RATIO_MAX,default=20"`
	VolumeMcapRatio  float64       `env:"VOLUME_TO_MCAP_RATIO_THRESHOLD,default=0.1"`
	RugScoreCeiling  float64       `env:"RUG_SCORE_CEILING,default=60"`
	HoneypotHardFail bool          `env:"HONEYPOT_HARD_FAIL,default=true"`
	OwnerHardFail    bool          `env:"OWNER_HARD_FAIL,default=true"`
	LiqLockHardFail  bool          `env:"LIQ_LOCK_HARD_FAIL,default=true"`

	LiquidityHardFail bool `env:"LIQUIDITY_HARD_FAIL,default=false"`
	MarketCapHardFail bool `env:"MARKET_CAP_HARD_FAIL,default=false"`
	VolumeHardFail    bool `env:"VOLUME_HARD_FAIL,default=false"`
	BuyCountHardFail  bool `env:"BUY_COUNT_HARD_FAIL,default=false"`
	FakeVolumeReject  bool `env:"FAKE_VOLUME_REJECT,default=false"`

	APICallsPerMinute int           `env:"API_CALLS_PER_MINUTE,default=60"`
	APIBurstLimit     int           `env:"API_BURST_LIMIT,default=10"`
	APIBurstWindow    time.Duration `env:"API_BURST_WINDOW,default=10s"`

	AlertsPerMinute  int           `env:"ALERTS_PER_MINUTE,default=5"`
	CooldownWindow   time.Duration `env:"TOKEN_COOLDOWN,default=10m"`
	MaxRetryAttempts int           `env:"MAX_RETRY_ATTEMPTS,default=3"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY,default=2s"`
	BacklogCapacity  int           `env:"BACKLOG_CAPACITY,default=200"`
	BacklogMaxAge    time.Duration `env:"BACKLOG_MAX_AGE,default=30m"`
	TickDelay        time.Duration `env:"TICK_DELAY,default=10s"`

	DashboardAddr string `env:"DASHBOARD_ADDR,default=:5000"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.SupportedChains) == 0 {
		return fmt.Errorf("at least one supported chain is required")
	}
	if c.MaxMarketCapUSD <= 0 {
		return fmt.Errorf("max market cap must be positive, got %f", c.MaxMarketCapUSD)
	}
	if c.MinMarketCapUSD < 0 || c.MinMarketCapUSD > c.MaxMarketCapUSD {
		return fmt.Errorf("min market cap must be within [0, max market cap]")
	}
	if c.MinTokenAge < 0 {
		return fmt.Errorf("min token age must be non-negative")
	}
	if c.APICallsPerMinute <= 0 {
		return fmt.Errorf("api calls per minute must be positive")
	}
	if c.AlertsPerMinute <= 0 {
		return fmt.Errorf("alerts per minute must be positive")
	}
	if c.MaxRetryAttempts < 1 {
		return fmt.Errorf("max retry attempts must be at least 1")
	}
	if c.BacklogCapacity < 1 {
		return fmt.Errorf("backlog capacity must be at least 1")
	}
	return nil
}
