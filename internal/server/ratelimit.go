package server

import (
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"taskmate/internal/config"
)

const (
	fallbackRatePerMinute = 30
	fallbackBurst         = 10
	rateLimitMessage      = "rate limit exceeded\n"
)

type ipBucket struct {
	tokens float64
	last   time.Time
}

// connLimiter is a token bucket per remote IP. Buckets that have refilled
// completely carry no state and are dropped on the next sweep.
type connLimiter struct {
	perSecond float64
	burst     float64
	now       func() time.Time

	mu        sync.Mutex
	buckets   map[string]ipBucket
	lastSweep time.Time
}

func newConnLimiter(limitPerMinute, burst int) *connLimiter {
	if limitPerMinute <= 0 {
		limitPerMinute = fallbackRatePerMinute
	}
	if burst <= 0 {
		burst = fallbackBurst
	}
	return &connLimiter{
		perSecond: float64(limitPerMinute) / 60,
		burst:     float64(burst),
		now:       time.Now,
		buckets:   make(map[string]ipBucket),
	}
}

// refillWindow is how long an empty bucket takes to fill up again.
func (l *connLimiter) refillWindow() time.Duration {
	return time.Duration(l.burst / l.perSecond * float64(time.Second))
}

func (l *connLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = ipBucket{tokens: l.burst, last: now}
	} else if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*l.perSecond, l.burst)
		b.last = now
	}
	if b.tokens < 1 {
		l.buckets[ip] = b
		return false
	}
	b.tokens--
	l.buckets[ip] = b
	return true
}

func (l *connLimiter) sweep(now time.Time) {
	window := l.refillWindow()
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now
	for ip, b := range l.buckets {
		if now.Sub(b.last) >= window {
			delete(l.buckets, ip)
		}
	}
}

func (l *connLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *connLimiter) middleware(logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			ip := remoteIP(s)
			if !l.allow(ip) {
				logger.Warn("connection throttled", "remote_ip", ip, "user", s.User())
				_, _ = s.Write([]byte(rateLimitMessage))
				return
			}
			next(s)
		}
	}
}

// RateLimitMiddleware limits new sessions per remote IP. Non-positive
// arguments fall back to 30 per minute with a burst of 10.
func RateLimitMiddleware(limitPerMinute, burst int, logger *log.Logger) wish.Middleware {
	return newConnLimiter(limitPerMinute, burst).middleware(logger)
}

// RateLimitFromConfig builds the limiter from the serve settings.
func RateLimitFromConfig(cfg config.SSHConfig, logger *log.Logger) wish.Middleware {
	return RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger)
}

func remoteIP(s ssh.Session) string {
	remote := s.RemoteAddr()
	if remote == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		return remote.String()
	}
	if host == "" {
		return "unknown"
	}
	return host
}
