package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultClientID is the client id tokens are issued for.
	DefaultClientID = "782ae96ea60f4cdf986a766049607005"

	// DefaultCacheDirName is the credential cache directory under the OS temp dir.
	DefaultCacheDirName = "spotty-cache"
)

// DefaultScopes are the scopes requested when fetching an access token.
var DefaultScopes = []string{
	"user-read-private",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-library-read",
	"user-library-modify",
	"user-top-read",
	"user-read-recently-played",
	"user-read-playback-state",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-modify-playback-state",
	"streaming",
}

// DefaultCacheDir returns the fixed, temp-dir relative credential cache path.
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), DefaultCacheDirName)
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			ClientID:   DefaultClientID,
			Scopes:     append([]string(nil), DefaultScopes...),
			DeviceName: "Speck",
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     DefaultCacheDir(),
		},
		Player: PlayerConfig{
			AudioBackend:  "rodio",
			InitialVolume: intPtr(DefaultVolume),
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Session
	if c.Session.ClientID == "" {
		c.Session.ClientID = d.Session.ClientID
	}
	if len(c.Session.Scopes) == 0 {
		c.Session.Scopes = d.Session.Scopes
	}
	if c.Session.DeviceName == "" {
		c.Session.DeviceName = d.Session.DeviceName
	}

	// Cache
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = d.Cache.Dir
	}

	// Player
	if c.Player.AudioBackend == "" {
		c.Player.AudioBackend = d.Player.AudioBackend
	}
	if c.Player.InitialVolume == nil {
		c.Player.InitialVolume = d.Player.InitialVolume
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func intPtr(i int) *int {
	return &i
}
