package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/ticktick-mcp/internal/config"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// ServerContext holds the shared state for the MCP server: the
// configuration, the TickTick client and the shutdown lifecycle.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	logger *slog.Logger

	mu       sync.RWMutex
	client   *ticktick.Client
	shutdown bool
}

// NewServerContext creates a new server context. The TickTick client is
// created eagerly when credentials are configured; if that fails,
// creation is retried lazily on first tool use so a startup hiccup does
// not take the whole server down.
func NewServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if logger == nil {
		logger = slog.Default()
	}

	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger,
	}

	if cfg.AccessToken != "" {
		client, err := sc.newClient()
		if err != nil {
			logger.Warn("failed to create TickTick client, will retry on first use", "error", err)
		} else {
			sc.client = client
		}
	}

	return sc, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Client returns the TickTick client, creating it on first use.
func (sc *ServerContext) Client() (*ticktick.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.client != nil {
		return sc.client, nil
	}

	client, err := sc.newClient()
	if err != nil {
		return nil, err
	}
	sc.client = client
	return client, nil
}

// SetClient replaces the TickTick client. Tests use this to inject a
// client pointed at a fake API.
func (sc *ServerContext) SetClient(client *ticktick.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.client = client
}

func (sc *ServerContext) newClient() (*ticktick.Client, error) {
	return ticktick.NewClient(sc.cfg.Credentials(),
		ticktick.WithBaseURL(sc.cfg.BaseURL),
		ticktick.WithTokenURL(sc.cfg.TokenURL),
		ticktick.WithLogger(sc.logger),
	)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
