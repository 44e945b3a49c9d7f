// Package speck is the host-facing bridge over a streaming engine. A Core
// walks a fixed lifecycle: Login produces a live session, InitPlayer
// binds a player to it, and NextEvent delivers that player's events one
// at a time while commands are issued independently.
//
// Login, GetToken and NextEvent suspend until the engine answers; pass a
// context to bound them. All other calls return immediately.
package speck

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tessro/speck/internal/config"
	"github.com/tessro/speck/internal/credentials"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/internal/events"
	"github.com/tessro/speck/internal/logging"
	"github.com/tessro/speck/internal/player"
	"github.com/tessro/speck/internal/session"
	"github.com/tessro/speck/pkg/engine"
)

// Core owns the session, the player and the event pump.
type Core struct {
	cfg      *config.Config
	logger   zerolog.Logger
	resolver *credentials.Resolver
	sessions *session.Manager
	player   *player.Controller

	// mu guards state and pump; it is never held while waiting on the engine.
	mu    sync.Mutex
	state State
	pump  *events.Pump
}

type options struct {
	cfg   *config.Config
	cache credentials.Cache
}

// Option configures New.
type Option func(*options)

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithCredentialCache replaces the cache selected by the configuration.
func WithCredentialCache(cache CredentialCache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// New creates a Core driving eng. The configuration is copied, so the
// caller's value is never modified. The first Core created in a process
// configures logging; later ones reuse it.
func New(eng engine.Engine, opts ...Option) (*Core, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := config.Default()
	if o.cfg != nil {
		cfg = o.cfg.Clone()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", speckerrors.ErrInvalidConfig, err)
	}

	logging.Setup(cfg.Log)

	cache := o.cache
	if cache == nil {
		var err error
		cache, err = credentials.NewCache(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", speckerrors.ErrInvalidConfig, err)
		}
	}

	sessions := session.NewManager(eng, cfg.Session, cache, cfg.Cache.ShouldStore(), logging.For("session"))

	c := &Core{
		cfg:      cfg,
		logger:   logging.For("core"),
		resolver: credentials.NewResolver(cache, logging.For("credentials")),
		sessions: sessions,
		player:   player.NewController(eng, sessions, cfg.Player, logging.For("player")),
	}
	c.logger.Debug().Str("cache", cfg.Cache.Backend).Str("backend", cfg.Player.AudioBackend).Msg("Core created")
	return c, nil
}

// State returns the current lifecycle state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// require checks the lifecycle guard for op.
func (c *Core) require(op string, want State) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state >= want {
		return nil
	}

	var err error
	switch want {
	case Authenticated:
		err = speckerrors.ErrNotAuthenticated
	default:
		err = speckerrors.ErrNotInitialized
	}
	return c.fail(op, err)
}

func (c *Core) fail(op string, err error) error {
	c.logger.Warn().Err(err).Str("op", op).Msg("Operation rejected")
	return speckerrors.Op(op, err)
}

// Login resolves credentials and connects. Cached credentials take
// precedence over username and password. Failures are reported in the
// result, never as an error, so the host can retry.
func (c *Core) Login(ctx context.Context, username, password string) LoginResult {
	creds := c.resolver.Resolve(username, password)

	sess, err := c.sessions.Connect(ctx, creds)
	if err != nil {
		return LoginResult{OK: false, Message: err.Error()}
	}

	c.mu.Lock()
	if c.state == Unauthenticated {
		c.state = Authenticated
	}
	c.mu.Unlock()

	c.logger.Info().Str("username", sess.Username()).Msg("Logged in")
	return LoginResult{OK: true}
}

// GetToken fetches a fresh access token for the configured scopes.
func (c *Core) GetToken(ctx context.Context) (Token, error) {
	if err := c.require("get_token", Authenticated); err != nil {
		return Token{}, err
	}

	tok, err := c.sessions.Token(ctx)
	if err != nil {
		return Token{}, c.fail("get_token", err)
	}
	return Token{AccessToken: tok.AccessToken, ExpiresInSeconds: tok.ExpiresInSeconds}, nil
}

// InitPlayer creates the player and its event pump. Calling it again
// replaces both; pending NextEvent calls on the old pump fail with
// ErrChannelClosed.
func (c *Core) InitPlayer() error {
	if err := c.require("init_player", Authenticated); err != nil {
		return err
	}

	ch, err := c.player.Initialize()
	if err != nil {
		return c.fail("init_player", err)
	}
	pump := events.NewPump(ch, logging.For("events"))

	c.mu.Lock()
	previous := c.pump
	c.pump = pump
	c.state = PlayerReady
	c.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return nil
}

// NextEvent waits for the next player event. Commands may be issued while
// a call is pending.
func (c *Core) NextEvent(ctx context.Context) (Event, error) {
	c.mu.Lock()
	pump := c.pump
	c.mu.Unlock()

	if pump == nil {
		return Event{}, c.fail("next_event", speckerrors.ErrNotInitialized)
	}

	ev, err := pump.Next(ctx)
	if err != nil {
		return Event{}, speckerrors.Op("next_event", err)
	}
	return ev, nil
}

// LoadTrack queues trackID to play from the start. Ids without a type
// are treated as tracks.
func (c *Core) LoadTrack(trackID string) error {
	if err := c.require("load_track", PlayerReady); err != nil {
		return err
	}
	if _, err := c.player.Load(trackID); err != nil {
		return c.fail("load_track", err)
	}
	return nil
}

// Play resumes playback.
func (c *Core) Play() error {
	return c.command("play", c.player.Play)
}

// Pause pauses playback.
func (c *Core) Pause() error {
	return c.command("pause", c.player.Pause)
}

// Stop unloads the current track.
func (c *Core) Stop() error {
	return c.command("stop", c.player.Stop)
}

// Seek moves to positionMs in the current track.
func (c *Core) Seek(positionMs uint32) error {
	return c.command("seek", func() error { return c.player.Seek(positionMs) })
}

// SetVolume sets the software volume (0-100).
func (c *Core) SetVolume(percent int) error {
	return c.command("set_volume", func() error { return c.player.SetVolume(percent) })
}

func (c *Core) command(op string, fn func() error) error {
	if err := c.require(op, PlayerReady); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return c.fail(op, err)
	}
	return nil
}

// ForgetCredentials clears the credential cache so the next Login uses
// the supplied username and password.
func (c *Core) ForgetCredentials() error {
	if err := c.resolver.Forget(); err != nil {
		return c.fail("forget_credentials", err)
	}
	c.logger.Info().Msg("Cached credentials cleared")
	return nil
}

// Close tears down the player, the pump and the session.
func (c *Core) Close() error {
	c.mu.Lock()
	pump := c.pump
	c.pump = nil
	c.state = Unauthenticated
	c.mu.Unlock()

	c.player.Close()
	if pump != nil {
		pump.Close()
	}
	return c.sessions.Close()
}
