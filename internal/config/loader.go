package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies LOTTO_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LOTTO_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "LOTTO_CHAIN_RPC_URL")
	setStr(&cfg.Chain.ContractAddress, "LOTTO_CHAIN_CONTRACT_ADDRESS")
	setInt64(&cfg.Chain.ChainID, "LOTTO_CHAIN_ID")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "LOTTO_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "LOTTO_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "LOTTO_WALLET_KEY_PASSWORD")

	// ── Backend ──
	setStr(&cfg.Backend.BaseURL, "LOTTO_BACKEND_BASE_URL")
	setStr(&cfg.Backend.AuthToken, "LOTTO_BACKEND_AUTH_TOKEN")

	// ── Price feed ──
	setStr(&cfg.PriceFeed.URL, "LOTTO_PRICE_FEED_URL")

	// ── Poll cadences ──
	setDuration(&cfg.Poll.Day, "LOTTO_POLL_DAY")
	setDuration(&cfg.Poll.Pot, "LOTTO_POLL_POT")
	setDuration(&cfg.Poll.Price, "LOTTO_POLL_PRICE")
	setDuration(&cfg.Poll.Tickets, "LOTTO_POLL_TICKETS")
	setDuration(&cfg.Poll.Total, "LOTTO_POLL_TOTAL")
	setDuration(&cfg.Poll.EthUsd, "LOTTO_POLL_ETH_USD")

	// ── Purchase ──
	setDuration(&cfg.Purchase.ReceiptInterval, "LOTTO_PURCHASE_RECEIPT_INTERVAL")
	setDuration(&cfg.Purchase.SubmitTimeout, "LOTTO_PURCHASE_SUBMIT_TIMEOUT")

	// ── Database ──
	setStr(&cfg.Database.DSN, "LOTTO_DATABASE_DSN")
	setStr(&cfg.Database.Host, "LOTTO_DATABASE_HOST")
	setInt(&cfg.Database.Port, "LOTTO_DATABASE_PORT")
	setStr(&cfg.Database.Database, "LOTTO_DATABASE_NAME")
	setStr(&cfg.Database.User, "LOTTO_DATABASE_USER")
	setStr(&cfg.Database.Password, "LOTTO_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "LOTTO_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "LOTTO_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "LOTTO_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "LOTTO_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "LOTTO_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LOTTO_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LOTTO_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "LOTTO_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "LOTTO_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "LOTTO_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLMinutes, "LOTTO_REDIS_CACHE_TTL_MINUTES")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "LOTTO_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "LOTTO_S3_REGION")
	setStr(&cfg.S3.Bucket, "LOTTO_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "LOTTO_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "LOTTO_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "LOTTO_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "LOTTO_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.RetentionDays, "LOTTO_S3_RETENTION_DAYS")
	setStr(&cfg.S3.ArchiveCron, "LOTTO_S3_ARCHIVE_CRON")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "LOTTO_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "LOTTO_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "LOTTO_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "LOTTO_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "LOTTO_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "LOTTO_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "LOTTO_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "LOTTO_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "LOTTO_MODE")
	setStr(&cfg.LogLevel, "LOTTO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
