// Package session owns the live connection to the streaming service.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tessro/speck/internal/config"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/pkg/engine"
)

// Token is an access token with its expiry normalised to whole seconds.
type Token struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	ExpiresInSeconds uint32 `json:"expires_in"`
}

// Manager holds at most one live session.
type Manager struct {
	connector engine.Connector
	cfg       config.SessionConfig
	store     engine.CredentialStore
	storeCred bool
	deviceID  string
	logger    zerolog.Logger

	mu      sync.RWMutex
	session engine.Session
}

// NewManager creates a session manager. store receives reusable
// credentials from the engine when storeCredentials is set.
func NewManager(connector engine.Connector, cfg config.SessionConfig, store engine.CredentialStore, storeCredentials bool, logger zerolog.Logger) *Manager {
	return &Manager{
		connector: connector,
		cfg:       cfg,
		store:     store,
		storeCred: storeCredentials,
		deviceID:  uuid.NewString(),
		logger:    logger,
	}
}

// Connect authenticates and stores the resulting session, replacing any
// previous one. A failed attempt leaves the slot as it was.
func (m *Manager) Connect(ctx context.Context, creds engine.Credentials) (engine.Session, error) {
	m.logger.Info().Str("username", creds.Username()).Msg("Connecting session")

	sess, err := m.connector.Connect(ctx, engine.SessionConfig{
		DeviceID:   m.deviceID,
		DeviceName: m.cfg.DeviceName,
		ClientID:   m.cfg.ClientID,
	}, creds, engine.ConnectOptions{
		Store:            m.store,
		StoreCredentials: m.storeCred,
	})

	if err != nil {
		m.logger.Warn().Err(err).Msg("Session connect failed")
		return nil, fmt.Errorf("%w: %w", speckerrors.ErrAuthFailure, err)
	}

	// A replaced session is dropped, not closed; a player may still hold it.
	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	m.logger.Info().
		Str("username", sess.Username()).
		Str("connection_id", sess.ConnectionID()).
		Msg("Session connected")
	return sess, nil
}

// IsConnected reports whether a live session exists.
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// Session returns the live session.
func (m *Manager) Session() (engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, speckerrors.ErrNotAuthenticated
	}
	return m.session, nil
}

// Token requests a fresh token for the configured client and scopes.
func (m *Manager) Token(ctx context.Context) (*Token, error) {
	return m.TokenFor(ctx, m.cfg.ScopeString())
}

// TokenFor requests a fresh token for scopes. Tokens are never cached.
func (m *Manager) TokenFor(ctx context.Context, scopes string) (*Token, error) {
	sess, err := m.Session()
	if err != nil {
		return nil, err
	}

	tok, err := sess.Token(ctx, m.cfg.ClientID, scopes)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	seconds := normaliseExpiry(tok.ExpiresIn)
	m.logger.Debug().Uint32("expires_in", seconds).Msg("Token issued")

	return &Token{
		AccessToken:      tok.AccessToken,
		TokenType:        tok.TokenType,
		Scope:            tok.Scope,
		ExpiresInSeconds: seconds,
	}, nil
}

// Close drops the live session.
func (m *Manager) Close() error {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.mu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.Close()
}

// DeviceID returns the id this manager presents to the service.
func (m *Manager) DeviceID() string {
	return m.deviceID
}

// normaliseExpiry truncates to whole seconds, clamping to the uint32 range.
func normaliseExpiry(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	s := int64(d / time.Second)
	if s > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s)
}
