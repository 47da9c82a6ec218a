// Package config defines the top-level configuration for the lottery
// synchronizer daemon and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by LOTTO_* environment variables.
// It is resolved once at startup and passed explicitly into every component;
// nothing reads it as ambient global state.
type Config struct {
	Chain     ChainConfig     `toml:"chain"`
	Wallet    WalletConfig    `toml:"wallet"`
	Backend   BackendConfig   `toml:"backend"`
	PriceFeed PriceFeedConfig `toml:"price_feed"`
	Poll      PollConfig      `toml:"poll"`
	Purchase  PurchaseConfig  `toml:"purchase"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ChainConfig holds RPC and contract parameters.
type ChainConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ContractAddress string `toml:"contract_address"`
	ChainID         int64  `toml:"chain_id"`
}

// WalletConfig holds the purchasing wallet's credentials. Either a raw hex
// key or an encrypted key file plus password may be supplied.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// BackendConfig holds the mini-app backend API parameters.
type BackendConfig struct {
	BaseURL   string `toml:"base_url"`
	AuthToken string `toml:"auth_token"`
}

// PriceFeedConfig holds the ETH/USD spot price source.
type PriceFeedConfig struct {
	URL string `toml:"url"`
}

// PollConfig holds the per-field polling cadences. The defaults are
// deliberately staggered so the independent reads do not land on the RPC
// endpoint in one burst.
type PollConfig struct {
	Day     duration `toml:"day"`
	Pot     duration `toml:"pot"`
	Price   duration `toml:"price"`
	Tickets duration `toml:"tickets"`
	Total   duration `toml:"total"`
	EthUsd  duration `toml:"eth_usd"`
}

// PurchaseConfig bounds the purchase lifecycle.
type PurchaseConfig struct {
	// ReceiptInterval is how often the receipt waiter polls for the mined
	// transaction.
	ReceiptInterval duration `toml:"receipt_interval"`
	// SubmitTimeout bounds the submitted state; when it expires the purchase
	// transitions to failed and becomes retryable.
	SubmitTimeout duration `toml:"submit_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the purchase
// journal.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"pool_size"`
	MaxRetries      int    `toml:"max_retries"`
	TLSEnabled      bool   `toml:"tls_enabled"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

// S3Config holds S3-compatible object storage parameters for the cold
// archive.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	RetentionDays  int    `toml:"retention_days"`
	// ArchiveCron is a standard 5-field cron expression scheduling the
	// purchase archive sweep.
	ArchiveCron string `toml:"archive_cron"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "60s", "121s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "31s" or "2m1s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:  "https://mainnet.base.org",
			ChainID: 8453,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080/api",
		},
		PriceFeed: PriceFeedConfig{
			URL: "https://api.coinbase.com/v2/prices/ETH-USD/spot",
		},
		Poll: PollConfig{
			Day:     duration{60 * time.Second},
			Pot:     duration{60 * time.Second},
			Price:   duration{121 * time.Second},
			Tickets: duration{31 * time.Second},
			Total:   duration{60 * time.Second},
			EthUsd:  duration{5 * time.Minute},
		},
		Purchase: PurchaseConfig{
			ReceiptInterval: duration{2 * time.Second},
			SubmitTimeout:   duration{3 * time.Minute},
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "lottery",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			DB:              0,
			PoolSize:        20,
			MaxRetries:      3,
			CacheTTLMinutes: 5,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "lottery-archive",
			UseSSL:         false,
			ForcePathStyle: true,
			RetentionDays:  30,
			ArchiveCron:    "0 3 * * *",
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8090,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		problems = append(problems, "chain.rpc_url is required")
	}
	if strings.TrimSpace(c.Chain.ContractAddress) == "" {
		problems = append(problems, "chain.contract_address is required")
	}
	if c.Chain.ChainID <= 0 {
		problems = append(problems, "chain.chain_id must be positive")
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		problems = append(problems, "backend.base_url is required")
	}

	switch c.Mode {
	case "watch", "serve", "full":
	default:
		problems = append(problems, fmt.Sprintf("mode %q is not one of watch, serve, full", c.Mode))
	}

	if c.Mode != "watch" && c.Wallet.PrivateKey == "" && c.Wallet.EncryptedKeyPath == "" {
		problems = append(problems, "wallet.private_key or wallet.encrypted_key_path is required outside watch mode")
	}

	for _, p := range []struct {
		name string
		d    time.Duration
	}{
		{"poll.day", c.Poll.Day.Duration},
		{"poll.pot", c.Poll.Pot.Duration},
		{"poll.price", c.Poll.Price.Duration},
		{"poll.tickets", c.Poll.Tickets.Duration},
		{"poll.total", c.Poll.Total.Duration},
	} {
		if p.d <= 0 {
			problems = append(problems, p.name+" must be positive")
		}
	}

	if c.Purchase.SubmitTimeout.Duration <= 0 {
		problems = append(problems, "purchase.submit_timeout must be positive")
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		problems = append(problems, "server.port must be in (0, 65535]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
