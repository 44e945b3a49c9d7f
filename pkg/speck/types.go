package speck

import (
	"github.com/tessro/speck/internal/config"
	"github.com/tessro/speck/internal/credentials"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/internal/events"
)

// LoginResult reports the outcome of Login. Failures carry a readable message.
type LoginResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Token is an access token for the web API.
type Token struct {
	AccessToken      string `json:"access_token"`
	ExpiresInSeconds uint32 `json:"expires_in"`
}

type (
	// Event is a player event in its bridge form.
	Event = events.BridgeEvent
	// EventKind names an Event variant.
	EventKind = events.Kind
	// Config configures a Core.
	Config = config.Config
	// CredentialCache persists reusable credentials.
	CredentialCache = credentials.Cache
)

const (
	EventStopped                      = events.KindStopped
	EventLoading                      = events.KindLoading
	EventPreloading                   = events.KindPreloading
	EventPlaying                      = events.KindPlaying
	EventPaused                       = events.KindPaused
	EventTimeToPreloadNextTrack       = events.KindTimeToPreloadNextTrack
	EventEndOfTrack                   = events.KindEndOfTrack
	EventUnavailable                  = events.KindUnavailable
	EventVolumeChanged                = events.KindVolumeChanged
	EventSeeked                       = events.KindSeeked
	EventPositionCorrection           = events.KindPositionCorrection
	EventTrackChanged                 = events.KindTrackChanged
	EventSessionConnected             = events.KindSessionConnected
	EventSessionDisconnected          = events.KindSessionDisconnected
	EventSessionClientChanged         = events.KindSessionClientChanged
	EventShuffleChanged               = events.KindShuffleChanged
	EventRepeatChanged                = events.KindRepeatChanged
	EventAutoPlayChanged              = events.KindAutoPlayChanged
	EventFilterExplicitContentChanged = events.KindFilterExplicitContentChanged
)

// Errors returned by Core. Match with errors.Is.
var (
	ErrAuthFailure      = speckerrors.ErrAuthFailure
	ErrNotAuthenticated = speckerrors.ErrNotAuthenticated
	ErrNotInitialized   = speckerrors.ErrNotInitialized
	ErrInvalidTrackID   = speckerrors.ErrInvalidTrackID
	ErrChannelClosed    = speckerrors.ErrChannelClosed
	ErrDecodeFailure    = speckerrors.ErrDecodeFailure
	ErrInvalidConfig    = speckerrors.ErrInvalidConfig
)

// ErrorKind returns a stable code for err ("not_initialized", ...).
func ErrorKind(err error) string {
	return speckerrors.Kind(err)
}

// DefaultConfig returns the configuration New uses when none is given.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.LoadFrom(path)
}
