package server

import (
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/wish/activeterm"

	"taskmate/internal/config"
	"taskmate/internal/router"
)

// DefaultChain is the production middleware order.
func DefaultChain(cfg config.SSHConfig, logger *log.Logger) []router.Descriptor {
	return []router.Descriptor{
		{Name: "rate-limit", Middleware: RateLimitFromConfig(cfg, logger)},
		{Name: "max-sessions", Middleware: MaxSessionsMiddleware(cfg.MaxSessions, logger)},
		{Name: "logging", Middleware: router.Logging(logger)},
		{Name: "active-term", Middleware: activeterm.Middleware()},
	}
}
