// Package engine defines the contracts of the external streaming engine:
// the connection routine that authenticates a session, the playback
// engine bound to it, and the event vocabulary the player emits.
package engine

import (
	"context"
	"time"

	"github.com/tessro/speck/pkg/spotifyid"
)

// Credentials is the closed set of login credential variants.
type Credentials interface {
	Username() string
	isCredentials()
}

// PasswordCredentials authenticate with a username and password.
type PasswordCredentials struct {
	User     string
	Password string
}

// Username returns the account name.
func (c PasswordCredentials) Username() string { return c.User }
func (PasswordCredentials) isCredentials()     {}

// StoredCredentials are reusable credentials previously issued by the
// service and kept in a credential cache.
type StoredCredentials struct {
	User     string `json:"username"`
	AuthData []byte `json:"auth_data"`
}

// Username returns the account name.
func (c StoredCredentials) Username() string { return c.User }
func (StoredCredentials) isCredentials()     {}

// CredentialStore receives reusable credentials after a successful login.
type CredentialStore interface {
	Save(creds StoredCredentials) error
}

// SessionConfig identifies this device to the service.
type SessionConfig struct {
	DeviceID   string
	DeviceName string
	ClientID   string
}

// ConnectOptions control what the engine does with credentials once
// authenticated.
type ConnectOptions struct {
	Store            CredentialStore
	StoreCredentials bool
}

// Connector performs the network handshake and authentication.
type Connector interface {
	Connect(ctx context.Context, cfg SessionConfig, creds Credentials, opts ConnectOptions) (Session, error)
}

// Token is an access token issued for a live session.
type Token struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresIn   time.Duration
}

// Session is an authenticated connection to the streaming service.
type Session interface {
	Username() string
	ConnectionID() string
	Token(ctx context.Context, clientID, scopes string) (Token, error)
	Close() error
}

// VolumeSource supplies the current software volume to the audio pipeline.
type VolumeSource interface {
	// Attenuation returns the linear gain factor in [0, 1].
	Attenuation() float64
}

// PlayerConfig configures a playback engine.
type PlayerConfig struct {
	AudioBackend  string
	Normalisation bool
}

// Player is a playback engine bound to a session. Commands are queued and
// return immediately; their outcome is reported through the event channel.
type Player interface {
	// Load queues a track and returns the play request id that later
	// events for this request will carry.
	Load(id spotifyid.ID, startPlaying bool, positionMs uint32) uint64
	Play()
	Pause()
	Stop()
	Seek(positionMs uint32)
	EmitVolumeChanged(volume uint16)
	// Close stops the player and closes its event channel.
	Close()
}

// PlayerFactory constructs players. The returned channel is closed when
// the player shuts down.
type PlayerFactory interface {
	NewPlayer(cfg PlayerConfig, session Session, volume VolumeSource) (Player, <-chan Event, error)
}

// Engine is the full external collaborator.
type Engine interface {
	Connector
	PlayerFactory
}
