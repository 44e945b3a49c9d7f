// Package player owns the playback engine and dispatches commands to it.
package player

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tessro/speck/internal/config"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

// SessionSource provides the live session a player binds to.
type SessionSource interface {
	Session() (engine.Session, error)
}

// Controller holds at most one player. Commands are queued on the engine
// and return immediately.
type Controller struct {
	factory  engine.PlayerFactory
	sessions SessionSource
	cfg      config.PlayerConfig
	mixer    *SoftMixer
	logger   zerolog.Logger

	mu     sync.RWMutex
	player engine.Player
}

// NewController creates a controller.
func NewController(factory engine.PlayerFactory, sessions SessionSource, cfg config.PlayerConfig, logger zerolog.Logger) *Controller {
	return &Controller{
		factory:  factory,
		sessions: sessions,
		cfg:      cfg,
		mixer:    NewSoftMixer(PercentToVolume(cfg.Volume())),
		logger:   logger,
	}
}

// Initialize builds a player on the live session and returns its event
// channel. A previous player is closed, which closes its channel.
func (c *Controller) Initialize() (<-chan engine.Event, error) {
	sess, err := c.sessions.Session()
	if err != nil {
		return nil, err
	}

	p, events, err := c.factory.NewPlayer(engine.PlayerConfig{
		AudioBackend:  c.cfg.AudioBackend,
		Normalisation: c.cfg.Normalisation,
	}, sess, c.mixer)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	c.mu.Lock()
	previous := c.player
	c.player = p
	c.mu.Unlock()

	if previous != nil {
		c.logger.Debug().Msg("Replacing existing player")
		previous.Close()
	}

	c.logger.Info().
		Str("backend", c.cfg.AudioBackend).
		Int("volume", VolumeToPercent(c.mixer.Volume())).
		Msg("Player initialized")
	return events, nil
}

// IsInitialized reports whether a player exists.
func (c *Controller) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.player != nil
}

func (c *Controller) current() (engine.Player, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.player == nil {
		return nil, speckerrors.ErrNotInitialized
	}
	return c.player, nil
}

// Load parses trackID, forces its type to track, and queues it to play
// from the start. It returns the play request id of the load.
func (c *Controller) Load(trackID string) (uint64, error) {
	p, err := c.current()
	if err != nil {
		return 0, err
	}

	id, err := spotifyid.Parse(trackID)
	if err != nil {
		return 0, err
	}
	if id.Type() == spotifyid.ItemTypeLocal {
		return 0, fmt.Errorf("%w: local files cannot be streamed", speckerrors.ErrInvalidTrackID)
	}
	id = id.WithType(spotifyid.ItemTypeTrack)

	req := p.Load(id, true, 0)
	c.logger.Debug().Str("track", id.String()).Uint64("play_request_id", req).Msg("Load queued")
	return req, nil
}

// Play resumes playback.
func (c *Controller) Play() error {
	p, err := c.current()
	if err != nil {
		return err
	}
	p.Play()
	return nil
}

// Pause pauses playback.
func (c *Controller) Pause() error {
	p, err := c.current()
	if err != nil {
		return err
	}
	p.Pause()
	return nil
}

// Stop unloads the current track.
func (c *Controller) Stop() error {
	p, err := c.current()
	if err != nil {
		return err
	}
	p.Stop()
	return nil
}

// Seek moves to an absolute position in the current track.
func (c *Controller) Seek(positionMs uint32) error {
	p, err := c.current()
	if err != nil {
		return err
	}
	p.Seek(positionMs)
	return nil
}

// SetVolume sets the software volume (0-100) and reports the change
// through the event channel.
func (c *Controller) SetVolume(percent int) error {
	p, err := c.current()
	if err != nil {
		return err
	}
	volume := PercentToVolume(percent)
	c.mixer.SetVolume(volume)
	p.EmitVolumeChanged(volume)
	return nil
}

// Volume returns the current volume as a percentage.
func (c *Controller) Volume() int {
	return VolumeToPercent(c.mixer.Volume())
}

// Close shuts the player down.
func (c *Controller) Close() {
	c.mu.Lock()
	p := c.player
	c.player = nil
	c.mu.Unlock()

	if p != nil {
		p.Close()
	}
}
