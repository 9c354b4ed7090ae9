// Package sshtest provides an in-memory ssh.Session for middleware tests.
package sshtest

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/charmbracelet/ssh"
)

// Context implements ssh.Context over a plain context.Context.
type Context struct {
	context.Context
	mu     sync.Mutex
	values map[any]any
	user   string
	remote net.Addr
}

func (c *Context) Lock()                         { c.mu.Lock() }
func (c *Context) Unlock()                       { c.mu.Unlock() }
func (c *Context) User() string                  { return c.user }
func (c *Context) SessionID() string             { return "0123456789abcdef0123" }
func (c *Context) ClientVersion() string         { return "SSH-2.0-test-client" }
func (c *Context) ServerVersion() string         { return "SSH-2.0-test-server" }
func (c *Context) RemoteAddr() net.Addr          { return c.remote }
func (c *Context) LocalAddr() net.Addr           { return localAddr }
func (c *Context) Permissions() *ssh.Permissions { return &ssh.Permissions{} }

func (c *Context) SetValue(key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Context) Value(key interface{}) interface{} {
	c.mu.Lock()
	v, ok := c.values[key]
	c.mu.Unlock()
	if ok {
		return v
	}
	return c.Context.Value(key)
}

var localAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2222}

// Session records everything written to it.
type Session struct {
	ctx    *Context
	remote net.Addr
	pty    bool

	mu     sync.Mutex
	writes []string
}

// NewSession returns a session for user arriving from remote. A nil ctx
// means context.Background.
func NewSession(ctx context.Context, user string, remote net.Addr) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		ctx:    &Context{Context: ctx, values: map[any]any{}, user: user, remote: remote},
		remote: remote,
	}
}

// WithPty marks the session as having a terminal.
func (s *Session) WithPty() *Session {
	s.pty = true
	return s
}

// Writes returns a copy of the writes so far.
func (s *Session) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// Output joins all writes.
func (s *Session) Output() string { return strings.Join(s.Writes(), "") }

func (s *Session) Read([]byte) (int, error) { return 0, io.EOF }

func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, string(p))
	return len(p), nil
}

func (s *Session) Close() error                                   { return nil }
func (s *Session) CloseWrite() error                              { return nil }
func (s *Session) SendRequest(string, bool, []byte) (bool, error) { return false, nil }
func (s *Session) Stderr() io.ReadWriter                          { return &bytes.Buffer{} }
func (s *Session) User() string                                   { return s.ctx.user }
func (s *Session) RemoteAddr() net.Addr                           { return s.remote }
func (s *Session) LocalAddr() net.Addr                            { return localAddr }
func (s *Session) Environ() []string                              { return nil }
func (s *Session) Exit(int) error                                 { return nil }
func (s *Session) Command() []string                              { return nil }
func (s *Session) RawCommand() string                             { return "" }
func (s *Session) Subsystem() string                              { return "" }
func (s *Session) PublicKey() ssh.PublicKey                       { return nil }
func (s *Session) Context() ssh.Context                           { return s.ctx }
func (s *Session) Permissions() ssh.Permissions                   { return ssh.Permissions{} }
func (s *Session) EmulatedPty() bool                              { return false }
func (s *Session) Signals(chan<- ssh.Signal)                      {}
func (s *Session) Break(chan<- bool)                              {}

func (s *Session) Pty() (ssh.Pty, <-chan ssh.Window, bool) {
	if !s.pty {
		return ssh.Pty{}, nil, false
	}
	return ssh.Pty{Term: "xterm-256color", Window: ssh.Window{Width: 80, Height: 24}}, nil, true
}

var _ ssh.Session = (*Session)(nil)
var _ ssh.Context = (*Context)(nil)
