package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cryptophy/lottod/internal/pipeline"
	"github.com/cryptophy/lottod/internal/server"
	"github.com/cryptophy/lottod/internal/server/handler"
	"github.com/cryptophy/lottod/internal/server/ws"
	"github.com/cryptophy/lottod/internal/service"
	"github.com/cryptophy/lottod/internal/view"
)

// WatchMode runs the read-only synchronizer and the settlement pipeline. No
// transactions are ever sent in this mode, even when a wallet key is
// configured.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode")

	g, ctx := errgroup.WithContext(ctx)

	sync := a.buildSynchronizer(deps, true)
	g.Go(func() error { return sync.Run(ctx) })

	orch := a.buildPipeline(deps)
	g.Go(func() error { return orch.Run(ctx) })

	return g.Wait()
}

// ServeMode runs the synchronizer with purchases enabled and exposes it over
// HTTP and WebSocket. The settlement pipeline is left to a watch or full
// instance.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	sync := a.buildSynchronizer(deps, false)
	g.Go(func() error { return sync.Run(ctx) })

	a.startHTTPServer(ctx, g, deps, sync)

	return g.Wait()
}

// FullMode runs everything in one process: synchronizer with purchases, the
// settlement pipeline, and the HTTP/WebSocket server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	sync := a.buildSynchronizer(deps, false)
	g.Go(func() error { return sync.Run(ctx) })

	orch := a.buildPipeline(deps)
	g.Go(func() error { return orch.Run(ctx) })

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, sync)
	}

	return g.Wait()
}

// buildSynchronizer assembles the view synchronizer. readOnly strips the
// writer so SubmitPurchase rejects instead of signing.
func (a *App) buildSynchronizer(deps *Dependencies, readOnly bool) *view.Synchronizer {
	opts := view.Options{
		Chain:    deps.Chain,
		Store:    deps.PurchaseStore,
		Bus:      deps.SignalBus,
		Notifier: eventNotifier{inner: deps.Notifier},
		Identity: deps.Session,
		Logger:   a.logger,
		Poll: view.PollIntervals{
			Day:     a.cfg.Poll.Day.Duration,
			Pot:     a.cfg.Poll.Pot.Duration,
			Price:   a.cfg.Poll.Price.Duration,
			Tickets: a.cfg.Poll.Tickets.Duration,
			Total:   a.cfg.Poll.Total.Duration,
			EthUsd:  a.cfg.Poll.EthUsd.Duration,
		},
		SubmitTimeout: a.cfg.Purchase.SubmitTimeout.Duration,
	}
	if !readOnly {
		opts.Writer = deps.Writer
		opts.Receipts = deps.Receipts
	}
	if deps.Prices != nil {
		opts.Prices = deps.Prices
	}
	return view.New(opts)
}

// buildPipeline assembles the draw monitor and, when the journal and archive
// are wired, the cold-storage sweep.
func (a *App) buildPipeline(deps *Dependencies) *pipeline.Orchestrator {
	monitor := pipeline.NewDrawMonitor(
		deps.Chain,
		deps.Archiver,
		deps.SignalBus,
		deps.SignalBus,
		eventNotifier{inner: deps.Notifier},
		a.cfg.Poll.Day.Duration,
		a.logger,
	)

	var archiver *pipeline.Archiver
	if deps.Archiver != nil && deps.PurchaseStore != nil {
		archiver = pipeline.NewArchiver(
			deps.Archiver,
			deps.BlobReader,
			deps.PurchaseStore,
			deps.LockManager,
			a.cfg.S3.RetentionDays,
			a.logger,
		)
	}

	return pipeline.NewOrchestrator(monitor, archiver, a.cfg.S3.ArchiveCron, a.logger)
}

// startHTTPServer adds the WebSocket hub and the HTTP server goroutines to
// the given errgroup. The server is shut down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, sync *view.Synchronizer) {
	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error { return hub.Run(ctx) })

	boards := service.NewBoardService(deps.Backend, deps.LeaderboardCache, deps.HistoryCache, a.logger)

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(deps.HealthChecks, a.logger),
		Snapshot:  handler.NewSnapshotHandler(sync, a.logger),
		Purchases: handler.NewPurchaseHandler(sync, deps.PurchaseStore, deps.Session, a.logger),
		Board:     handler.NewBoardHandler(boards, deps.Session, a.logger),
		Profile:   handler.NewProfileHandler(deps.Session, a.logger),
		Draws:     handler.NewDrawsHandler(deps.SignalBus, deps.BlobReader, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error { return srv.Start() })
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
