package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"

	"taskmate/internal/config"
	"taskmate/internal/router"
)

const (
	version         = "dev"
	shutdownTimeout = 10 * time.Second
)

// Runtime wires config, middleware and the TUI handler into a wish server.
type Runtime struct {
	cfg           config.SSHConfig
	logger        *log.Logger
	middlewareIDs []string
	server        *ssh.Server
}

// New builds the server. chain runs in order before handler.
func New(cfg config.SSHConfig, chain []router.Descriptor, handler bm.Handler, logger *log.Logger) (*Runtime, error) {
	middleware := append([]wish.Middleware{bm.Middleware(handler)}, router.MiddlewareFromDescriptors(chain)...)

	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Address()),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, err
	}
	return &Runtime{cfg: cfg, logger: logger, middlewareIDs: router.Names(chain), server: srv}, nil
}

func (r *Runtime) MiddlewareIDs() []string {
	out := make([]string, len(r.middlewareIDs))
	copy(out, r.middlewareIDs)
	return out
}

func (r *Runtime) Address() string {
	return r.server.Addr
}

// Run serves until ctx ends or the process receives SIGINT/SIGTERM.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := r.server.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("shutdown", "err", err)
		}
	}()

	r.logger.Info("startup",
		"version", version,
		"address", r.Address(),
		"middleware", r.middlewareIDs,
		"host_key_path", r.cfg.HostKeyPath,
		"idle_timeout", r.cfg.IdleTimeout,
		"max_sessions", r.cfg.MaxSessions,
	)
	err := r.server.ListenAndServe()
	if err == nil || errors.Is(err, ssh.ErrServerClosed) {
		r.logger.Info("stopped")
		return nil
	}
	return err
}
