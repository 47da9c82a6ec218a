package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptophy/lottod/internal/auth"
	s3blob "github.com/cryptophy/lottod/internal/blob/s3"
	"github.com/cryptophy/lottod/internal/cache/redis"
	"github.com/cryptophy/lottod/internal/config"
	"github.com/cryptophy/lottod/internal/crypto"
	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/notify"
	"github.com/cryptophy/lottod/internal/platform/backend"
	"github.com/cryptophy/lottod/internal/platform/chain"
	"github.com/cryptophy/lottod/internal/platform/pricefeed"
	"github.com/cryptophy/lottod/internal/server/handler"
	"github.com/cryptophy/lottod/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Chain access
	Chain    *chain.Client
	Writer   domain.ChainWriter
	Receipts domain.ReceiptWaiter

	// Mini-app backend and market data
	Backend *backend.Client
	Prices  *pricefeed.Client
	Session *auth.Session

	// Stores
	PurchaseStore domain.PurchaseStore

	// Caches and signalling
	LeaderboardCache domain.LeaderboardCache
	HistoryCache     domain.HistoryCache
	RateLimiter      domain.RateLimiter
	LockManager      domain.LockManager
	SignalBus        *redis.SignalBus

	// Blob storage
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
	Archiver   domain.Archiver

	// Notifications
	Notifier *notify.Notifier

	// HealthChecks are downstream probes surfaced by GET /api/health.
	HealthChecks map[string]handler.DepCheck
}

// needsPostgres returns true for modes that journal purchases.
func needsPostgres(mode string) bool {
	switch mode {
	case "serve", "full":
		return true
	default:
		return false
	}
}

// needsWriter returns true for modes that submit purchase transactions.
// Watch mode stays strictly read-only even when a key is configured.
func needsWriter(mode string) bool {
	switch mode {
	case "serve", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		HealthChecks: make(map[string]handler.DepCheck),
	}

	// --- Chain ---
	chainClient, err := chain.New(cfg.Chain.RPCURL, cfg.Chain.ContractAddress)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: chain: %w", err)
	}
	closers = append(closers, chainClient.Close)
	deps.Chain = chainClient
	deps.HealthChecks["chain"] = func(ctx context.Context) error {
		_, err := chainClient.CurrentDay(ctx)
		return err
	}

	if needsWriter(cfg.Mode) {
		keyHex, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet key: %w", err)
		}
		writer, err := chain.NewWriter(chainClient, keyHex, cfg.Chain.ChainID)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: chain writer: %w", err)
		}
		deps.Writer = writer
		deps.Receipts = chain.NewReceiptWaiter(chainClient, cfg.Purchase.ReceiptInterval.Duration)
	}

	// --- Backend and session ---
	deps.Backend = backend.NewClient(cfg.Backend.BaseURL)
	deps.Session = auth.NewSession(deps.Backend, logger)
	if cfg.Backend.AuthToken != "" {
		if err := deps.Session.Authenticate(ctx, cfg.Backend.AuthToken); err != nil {
			// Ticket polling and history stay dormant without a profile; the
			// rest of the daemon still runs.
			logger.WarnContext(ctx, "wire: backend authentication failed",
				slog.String("error", err.Error()),
			)
		}
	}

	// --- ETH/USD price feed ---
	if cfg.PriceFeed.URL != "" {
		deps.Prices = pricefeed.NewClient(cfg.PriceFeed.URL)
	}

	// --- PostgreSQL (only for modes that journal purchases) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Database.DSN,
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.PoolMaxConns,
			MinConns: cfg.Database.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Database.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.PurchaseStore = postgres.NewPurchaseStore(pool)
		deps.HealthChecks["postgres"] = pool.Ping
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })
	deps.HealthChecks["redis"] = redisClient.Ping

	redisTTL := time.Duration(0)
	if cfg.Redis.CacheTTLMinutes > 0 {
		redisTTL = time.Duration(cfg.Redis.CacheTTLMinutes) * time.Minute
	}

	deps.LeaderboardCache = redis.NewLeaderboardCache(redisClient, redisTTL)
	deps.HistoryCache = redis.NewHistoryCache(redisClient, redisTTL)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (optional cold archive) ---
	if cfg.S3.Bucket != "" {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		// The purchase side of the archiver needs the journal; without
		// Postgres it still archives settled day records.
		var journal s3blob.PurchaseArchiveStore
		if deps.PurchaseStore != nil {
			journal = deps.PurchaseStore
		}
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, journal)
		deps.HealthChecks["s3"] = s3Client.Health
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// notifyTitles maps event names to the title line sent to notification
// channels.
var notifyTitles = map[string]string{
	"purchase_confirmed": "Ticket purchase confirmed",
	"draw":               "Daily draw settled",
}

// eventNotifier adapts the multi-channel notifier to the single-message shape
// the synchronizer and pipeline expect.
type eventNotifier struct {
	inner *notify.Notifier
}

func (n eventNotifier) Notify(ctx context.Context, event, message string) error {
	title := notifyTitles[event]
	if title == "" {
		title = "Lottery"
	}
	return n.inner.Notify(ctx, event, title, message)
}
