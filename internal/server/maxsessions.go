package server

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// MaxSessionsMiddleware caps concurrent sessions. A slot is freed when the
// handler returns or the session context ends, whichever comes first; a
// panicking handler is logged and its slot freed.
func MaxSessionsMiddleware(limit int, logger *log.Logger) wish.Middleware {
	if limit <= 0 {
		limit = 1
	}
	slots := make(chan struct{}, limit)

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			select {
			case slots <- struct{}{}:
			default:
				logger.Warn("max sessions exceeded", "limit", limit, "remote_ip", remoteIP(s))
				_, _ = s.Write([]byte("max sessions exceeded\n"))
				return
			}

			var once sync.Once
			release := func() { once.Do(func() { <-slots }) }
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-s.Context().Done():
					release()
				case <-done:
				}
			}()
			defer release()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("session handler panic", "panic", r, "remote_ip", remoteIP(s))
				}
			}()
			next(s)
		}
	}
}
