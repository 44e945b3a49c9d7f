// Package credentials decides which credentials a login attempt uses and
// provides the caches reusable credentials are kept in.
package credentials

import (
	"github.com/rs/zerolog"
	"github.com/tessro/speck/pkg/engine"
)

// Resolver picks between cached and supplied credentials.
type Resolver struct {
	cache  Cache
	logger zerolog.Logger
}

// NewResolver creates a resolver reading from cache.
func NewResolver(cache Cache, logger zerolog.Logger) *Resolver {
	if cache == nil {
		cache = NoCache{}
	}
	return &Resolver{cache: cache, logger: logger}
}

// Resolve returns cached credentials when present, ignoring the supplied
// username and password. Otherwise it builds password credentials. A cache
// that cannot be read is treated as empty.
func (r *Resolver) Resolve(username, password string) engine.Credentials {
	cached, err := r.cache.Load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("Credential cache unreadable, using supplied credentials")
	}

	if creds, ok := cached.Get(); ok {
		r.logger.Debug().Str("username", creds.User).Msg("Using cached credentials")
		return creds
	}

	r.logger.Debug().Str("username", username).Msg("Using supplied credentials")
	return engine.PasswordCredentials{User: username, Password: password}
}

// Forget clears the cache so the next Resolve uses supplied credentials.
func (r *Resolver) Forget() error {
	return r.cache.Clear()
}

// Cache returns the underlying cache.
func (r *Resolver) Cache() Cache {
	return r.cache
}
