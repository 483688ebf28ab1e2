package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matiasleandrokruk/soksol/internal/api"
	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
	"github.com/matiasleandrokruk/soksol/internal/domain/privacy"
	"github.com/matiasleandrokruk/soksol/internal/infra/config"
	"github.com/matiasleandrokruk/soksol/internal/infra/eventbus"
	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
	"github.com/matiasleandrokruk/soksol/internal/infra/ratelimit"
	"github.com/matiasleandrokruk/soksol/internal/mcpserver"
	"github.com/matiasleandrokruk/soksol/internal/server"
	"github.com/matiasleandrokruk/soksol/internal/version"
)

const shutdownTimeout = 10 * time.Second

// app holds the services shared by the HTTP and MCP front ends.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	bus     *eventbus.Bus
	stats   *privacy.Stats
	chat    *chat.Service
}

func newApp(cfg config.Config, logger *slog.Logger, opts ...llm.ClientOption) (*app, error) {
	p := cfg.Policy
	router := llm.NewRouterFromSettings(cfg.LLM)

	clientOpts := append([]llm.ClientOption{
		llm.WithAttemptTimeout(p.Upstream.Timeout),
		llm.WithRetryPolicy(p.Upstream.Retry),
		llm.WithLogger(logger),
	}, opts...)
	client := llm.NewClient(router.Build, clientOpts...)

	limiter := ratelimit.New(p.RateLimit)
	bus := eventbus.New()

	svc, err := chat.NewService(limiter, client, chat.ServiceConfig{
		Limits:            p.Validation,
		BlockedUserAgents: p.BlockedUserAgents,
		SystemPrompt:      p.SystemPrompt,
		LatestLabel:       p.LatestLabel,
		DefaultLocale:     chat.ParseLocale(p.DefaultLocale),
	}, chat.WithPublisher(bus), chat.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("chat service: %w", err)
	}

	logger.Info("llm provider selected", slog.String("provider", router.Name()))

	return &app{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
		bus:     bus,
		stats:   privacy.NewStats(),
		chat:    svc,
	}, nil
}

// startStats feeds outcome events into the activity counters until ctx is
// done or the bus is closed.
func (a *app) startStats(ctx context.Context) {
	go a.stats.Run(ctx, a.bus.Subscribe(chat.TopicOutcome))
}

func (a *app) router() http.Handler {
	return api.NewRouter(api.Deps{
		Chat:          a.chat,
		Privacy:       privacy.NewReporter(a.limiter, a.stats),
		Logger:        a.logger,
		DefaultLocale: chat.ParseLocale(a.cfg.Policy.DefaultLocale),
	})
}

// loadRuntime reads configuration and builds the logger. The returned func
// closes the optional log file.
func loadRuntime() (config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, closeLog := config.SetupLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, closeLog, nil
}

func runServe(ctx context.Context, flags rootFlags, changed func(string) bool) error {
	cfg, logger, closeLog, err := loadRuntime()
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	if changed("host") {
		cfg.Host = flags.host
	}
	if changed("port") {
		cfg.Port = flags.port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.bus.Close()
	a.startStats(ctx)

	scfg := server.DefaultConfig()
	scfg.Host = cfg.Host
	scfg.Port = cfg.Port
	srv := server.NewServer(a.router(), scfg, logger)

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr(), err)
	}
	logger.Info("soksol starting", slog.String("version", version.Version))
	return serveUntilDone(ctx, srv, ln)
}

// serveUntilDone serves on ln until ctx is cancelled, then drains in-flight
// requests for at most shutdownTimeout.
func serveUntilDone(ctx context.Context, srv *server.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func runMCP(ctx context.Context) error {
	cfg, logger, closeLog, err := loadRuntime()
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.bus.Close()
	a.startStats(ctx)

	return mcpserver.New(version.Version, a.chat, logger).Run(ctx)
}
