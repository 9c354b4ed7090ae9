// Package router names and orders the SSH middleware chain.
package router

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// Descriptor is one named link of the chain.
type Descriptor struct {
	Name       string
	Middleware wish.Middleware
}

// Names lists descriptor names in execution order.
func Names(chain []Descriptor) []string {
	out := make([]string, 0, len(chain))
	for _, d := range chain {
		out = append(out, d.Name)
	}
	return out
}

// MiddlewareFromDescriptors converts chain to the slice wish.WithMiddleware
// expects. wish runs the last middleware first, so the order is reversed
// here and chain[0] sees each session before the others.
func MiddlewareFromDescriptors(chain []Descriptor) []wish.Middleware {
	out := make([]wish.Middleware, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Middleware != nil {
			out = append(out, chain[i].Middleware)
		}
	}
	return out
}

// Logging logs session start and end and leaves a per-session logger in the
// session context for handlers further down.
func Logging(logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			started := time.Now()
			l := logger.With("session", shortID(s.Context().SessionID()), "user", s.User(), "remote", addr(s))
			s.Context().SetValue(loggerContextKey, l)

			_, _, isPty := s.Pty()
			l.Info("session start", "pty", isPty)
			next(s)
			l.Info("session end", "duration_ms", time.Since(started).Milliseconds())
		}
	}
}

// Logger returns the session logger stored by Logging, or fallback.
func Logger(ctx ssh.Context, fallback *log.Logger) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerContextKey).(*log.Logger); ok {
			return l
		}
	}
	return fallback
}

func addr(s ssh.Session) string {
	if a := s.RemoteAddr(); a != nil {
		return a.String()
	}
	return "unknown"
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
