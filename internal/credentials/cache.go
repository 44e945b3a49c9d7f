package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/mo"
	"github.com/spf13/afero"
	"github.com/tessro/speck/internal/config"
	"github.com/tessro/speck/pkg/engine"
	"github.com/zalando/go-keyring"
)

const (
	// DefaultFileName is the name of the credential file inside the cache dir.
	DefaultFileName = "credentials.json"

	keyringService = "speck"
	keyringUser    = "stored-credentials"
)

// Cache persists reusable credentials between logins.
type Cache interface {
	engine.CredentialStore
	Load() (mo.Option[engine.StoredCredentials], error)
	Clear() error
}

// NewCache builds the cache selected by cfg.
func NewCache(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileCache(afero.NewOsFs(), cfg.Dir), nil
	case "keyring":
		return NewKeyringCache(), nil
	case "none":
		return NoCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// FileCache keeps credentials in a JSON file inside a cache directory.
type FileCache struct {
	fs   afero.Fs
	path string
}

// NewFileCache creates a file cache rooted at dir. An empty dir selects
// the default location under the OS temp directory.
func NewFileCache(fs afero.Fs, dir string) *FileCache {
	if dir == "" {
		dir = config.DefaultCacheDir()
	}
	return &FileCache{fs: fs, path: filepath.Join(dir, DefaultFileName)}
}

// Load reads cached credentials, if any.
func (c *FileCache) Load() (mo.Option[engine.StoredCredentials], error) {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return mo.None[engine.StoredCredentials](), nil
		}
		return mo.None[engine.StoredCredentials](), fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds engine.StoredCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return mo.None[engine.StoredCredentials](), fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if creds.User == "" || len(creds.AuthData) == 0 {
		return mo.None[engine.StoredCredentials](), nil
	}

	return mo.Some(creds), nil
}

// Save writes credentials with owner-only permissions.
func (c *FileCache) Save(creds engine.StoredCredentials) error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Clear removes the cached credentials.
func (c *FileCache) Clear() error {
	err := c.fs.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}
	return nil
}

// Path returns the path to the credentials file.
func (c *FileCache) Path() string {
	return c.path
}

// KeyringCache keeps credentials in the system keyring.
type KeyringCache struct{}

// NewKeyringCache creates a keyring-backed cache.
func NewKeyringCache() *KeyringCache {
	return &KeyringCache{}
}

// Load reads cached credentials, if any.
func (KeyringCache) Load() (mo.Option[engine.StoredCredentials], error) {
	secret, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return mo.None[engine.StoredCredentials](), nil
		}
		return mo.None[engine.StoredCredentials](), fmt.Errorf("failed to read keyring: %w", err)
	}

	var creds engine.StoredCredentials
	if err := json.Unmarshal([]byte(secret), &creds); err != nil {
		return mo.None[engine.StoredCredentials](), fmt.Errorf("failed to parse keyring entry: %w", err)
	}
	if creds.User == "" || len(creds.AuthData) == 0 {
		return mo.None[engine.StoredCredentials](), nil
	}
	return mo.Some(creds), nil
}

// Save writes credentials to the keyring.
func (KeyringCache) Save(creds engine.StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return keyring.Set(keyringService, keyringUser, string(data))
}

// Clear removes the keyring entry.
func (KeyringCache) Clear() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}

// NoCache never remembers anything.
type NoCache struct{}

func (NoCache) Load() (mo.Option[engine.StoredCredentials], error) {
	return mo.None[engine.StoredCredentials](), nil
}

func (NoCache) Save(engine.StoredCredentials) error { return nil }

func (NoCache) Clear() error { return nil }

var (
	_ Cache = (*FileCache)(nil)
	_ Cache = KeyringCache{}
	_ Cache = NoCache{}
)
