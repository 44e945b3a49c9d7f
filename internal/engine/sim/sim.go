// Package sim is an in-process streaming engine. It authenticates against
// a fixed account table, issues random tokens, and drives a player that
// turns queued commands into the same events a networked engine emits.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

const (
	// DefaultDurationMs is the length reported for tracks missing from the catalog.
	DefaultDurationMs = 180000

	// DefaultTokenTTL is the lifetime of issued access tokens.
	DefaultTokenTTL = time.Hour
)

var (
	ErrBadCredentials = errors.New("login failed: bad credentials")
	ErrSessionClosed  = errors.New("session closed")
	ErrUnknownBackend = errors.New("unknown audio backend")
	ErrForeignSession = errors.New("session was not created by this engine")
)

var (
	authDataNamespace = uuid.MustParse("6f1f3c2e-6a8e-4c55-9f57-1d0c2a8e5b10")
	defaultBackends   = []string{"rodio", "pipe"}
)

// Engine implements engine.Engine in memory.
type Engine struct {
	mu          sync.Mutex
	accounts    map[string]string
	catalog     map[string]uint32
	unavailable map[string]bool
	backends    []string
	tokenTTL    time.Duration
	strict      bool

	connects      int
	tokenRequests int
	players       []*Player
}

// Option configures an Engine.
type Option func(*Engine)

// WithAccount registers a username and password.
func WithAccount(username, password string) Option {
	return func(e *Engine) {
		e.accounts[username] = password
	}
}

// WithTrack registers a track duration by base62 id.
func WithTrack(id string, durationMs uint32) Option {
	return func(e *Engine) {
		e.catalog[id] = durationMs
	}
}

// WithUnavailableTrack marks a base62 id as not playable.
func WithUnavailableTrack(id string) Option {
	return func(e *Engine) {
		e.unavailable[id] = true
	}
}

// WithStrictCatalog makes tracks missing from the catalog unavailable.
func WithStrictCatalog() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.tokenTTL = ttl
	}
}

// WithBackends replaces the set of known audio backends.
func WithBackends(names ...string) Option {
	return func(e *Engine) {
		e.backends = names
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		accounts:    make(map[string]string),
		catalog:     make(map[string]uint32),
		unavailable: make(map[string]bool),
		backends:    defaultBackends,
		tokenTTL:    DefaultTokenTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AuthData returns the reusable credential blob issued for username.
func AuthData(username string) []byte {
	id := uuid.NewSHA1(authDataNamespace, []byte(username))
	return id[:]
}

// Connect authenticates creds against the account table.
func (e *Engine) Connect(ctx context.Context, cfg engine.SessionConfig, creds engine.Credentials, opts engine.ConnectOptions) (engine.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.connects++
	e.mu.Unlock()

	if err := e.authenticate(creds); err != nil {
		return nil, err
	}

	if pw, ok := creds.(engine.PasswordCredentials); ok && opts.StoreCredentials && opts.Store != nil {
		stored := engine.StoredCredentials{User: pw.User, AuthData: AuthData(pw.User)}
		if err := opts.Store.Save(stored); err != nil {
			return nil, fmt.Errorf("failed to store credentials: %w", err)
		}
	}

	return &Session{
		engine:       e,
		username:     creds.Username(),
		connectionID: uuid.NewString(),
		deviceID:     cfg.DeviceID,
	}, nil
}

func (e *Engine) authenticate(creds engine.Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch c := creds.(type) {
	case engine.PasswordCredentials:
		want, ok := e.accounts[c.User]
		if !ok || want != c.Password {
			return ErrBadCredentials
		}
	case engine.StoredCredentials:
		if _, ok := e.accounts[c.User]; !ok || !slices.Equal(c.AuthData, AuthData(c.User)) {
			return ErrBadCredentials
		}
	default:
		return fmt.Errorf("unsupported credentials %T", creds)
	}
	return nil
}

// NewPlayer starts a player bound to session.
func (e *Engine) NewPlayer(cfg engine.PlayerConfig, session engine.Session, volume engine.VolumeSource) (engine.Player, <-chan engine.Event, error) {
	s, ok := session.(*Session)
	if !ok || s.engine != e {
		return nil, nil, ErrForeignSession
	}
	if !slices.Contains(e.backends, cfg.AudioBackend) {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.AudioBackend)
	}

	p := newPlayer(e, volume)

	e.mu.Lock()
	e.players = append(e.players, p)
	e.mu.Unlock()

	return p, p.events, nil
}

// Connects returns how many connection attempts were made.
func (e *Engine) Connects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connects
}

// TokenRequests returns how many tokens were issued or refused.
func (e *Engine) TokenRequests() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tokenRequests
}

// Players returns every player created so far.
func (e *Engine) Players() []*Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.players)
}

func (e *Engine) lookup(id spotifyid.ID) (uint32, bool) {
	b62, err := id.ToBase62()
	if err != nil {
		return 0, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unavailable[b62] {
		return 0, false
	}
	if d, ok := e.catalog[b62]; ok {
		return d, true
	}
	if e.strict {
		return 0, false
	}
	return DefaultDurationMs, true
}

// Session is a simulated authenticated session.
type Session struct {
	engine       *Engine
	username     string
	connectionID string
	deviceID     string

	mu     sync.Mutex
	closed bool
}

// Username returns the authenticated account.
func (s *Session) Username() string { return s.username }

// ConnectionID returns the id the service assigned this connection.
func (s *Session) ConnectionID() string { return s.connectionID }

// DeviceID returns the device id presented at connect time.
func (s *Session) DeviceID() string { return s.deviceID }

// Token issues a fresh access token.
func (s *Session) Token(ctx context.Context, clientID, scopes string) (engine.Token, error) {
	if err := ctx.Err(); err != nil {
		return engine.Token{}, err
	}

	s.engine.mu.Lock()
	s.engine.tokenRequests++
	ttl := s.engine.tokenTTL
	s.engine.mu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return engine.Token{}, ErrSessionClosed
	}

	return engine.Token{
		AccessToken: uuid.NewString(),
		TokenType:   "Bearer",
		Scope:       scopes,
		ExpiresIn:   ttl,
	}, nil
}

// Close invalidates the session.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var (
	_ engine.Engine  = (*Engine)(nil)
	_ engine.Session = (*Session)(nil)
)
