package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tessro/speck/internal/credentials"
	"github.com/tessro/speck/internal/engine/sim"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/internal/wizard"
	"github.com/tessro/speck/pkg/speck"
)

// newEngine builds the in-process engine from the --account flags.
func newEngine() (*sim.Engine, error) {
	opts := make([]sim.Option, 0, len(simAccounts))
	for _, a := range simAccounts {
		user, pass, ok := strings.Cut(a, ":")
		if !ok || user == "" {
			return nil, speckerrors.WithSuggestion(
				fmt.Errorf("invalid --account %q", a),
				"Pass accounts as --account user:password",
			)
		}
		opts = append(opts, sim.WithAccount(user, pass))
	}
	return sim.New(opts...), nil
}

func openCore() (*speck.Core, error) {
	eng, err := newEngine()
	if err != nil {
		return nil, err
	}
	return speck.New(eng, speck.WithConfig(cfg))
}

// hasCachedCredentials reports whether the configured cache holds
// credentials that Login will use in place of a password.
func hasCachedCredentials() bool {
	cache, err := credentials.NewCache(cfg.Cache)
	if err != nil {
		return false
	}
	stored, err := cache.Load()
	return err == nil && stored.IsPresent()
}

// login logs c in, prompting for anything the cache and flags do not supply.
func login(ctx context.Context, c *speck.Core, username, password string) (speck.LoginResult, error) {
	if password == "" {
		password = os.Getenv("SPECK_PASSWORD")
	}

	if !hasCachedCredentials() {
		in := wizard.NewInteractive()
		in.SetEnabled(!noInput)

		creds, err := in.PromptCredentials(wizard.Credentials{Username: username, Password: password})
		if err != nil {
			return speck.LoginResult{}, speckerrors.WithSuggestion(
				fmt.Errorf("no cached credentials: %w", err),
				"Pass --password or set SPECK_PASSWORD",
			)
		}
		username, password = creds.Username, creds.Password
	}

	return c.Login(ctx, username, password), nil
}

// mustLogin is login that turns a rejected login into an error.
func mustLogin(ctx context.Context, c *speck.Core, username, password string) error {
	res, err := login(ctx, c, username, password)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%w: %s", speck.ErrAuthFailure, res.Message)
	}
	return nil
}
