package config

// Config is the root configuration structure.
type Config struct {
	Session SessionConfig `toml:"session"`
	Cache   CacheConfig   `toml:"cache"`
	Player  PlayerConfig  `toml:"player"`
	Log     LogConfig     `toml:"log"`
}

// SessionConfig holds streaming session settings.
type SessionConfig struct {
	ClientID   string   `toml:"client_id"`
	Scopes     []string `toml:"scopes"`
	DeviceName string   `toml:"device_name"`
}

// CacheConfig holds credential cache settings.
type CacheConfig struct {
	Backend          string `toml:"backend"`
	Dir              string `toml:"dir"`
	StoreCredentials *bool  `toml:"store_credentials"`
}

// ShouldStore reports whether the engine may persist reusable credentials.
func (c *CacheConfig) ShouldStore() bool {
	return c.StoreCredentials == nil || *c.StoreCredentials
}

// PlayerConfig holds playback engine settings.
type PlayerConfig struct {
	AudioBackend  string `toml:"audio_backend"`
	InitialVolume *int   `toml:"initial_volume"`
	Normalisation bool   `toml:"normalisation"`
}

// DefaultVolume is the initial volume used when none is configured.
const DefaultVolume = 50

// Volume returns the configured initial volume percent. An explicit 0
// mutes the player.
func (c *PlayerConfig) Volume() int {
	if c.InitialVolume == nil {
		return DefaultVolume
	}
	return *c.InitialVolume
}

// Clone returns a copy of c that shares no mutable state with it.
func (c *Config) Clone() *Config {
	out := *c
	out.Session.Scopes = append([]string(nil), c.Session.Scopes...)
	if c.Cache.StoreCredentials != nil {
		v := *c.Cache.StoreCredentials
		out.Cache.StoreCredentials = &v
	}
	if c.Player.InitialVolume != nil {
		v := *c.Player.InitialVolume
		out.Player.InitialVolume = &v
	}
	return &out
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}
