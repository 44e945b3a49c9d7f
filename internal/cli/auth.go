package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/speck/internal/wizard"
)

var (
	loginPassword string
	loginFresh    bool
	logoutYes     bool
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and cache reusable credentials",
	Long: `Log in to the engine. Cached credentials are used when present;
otherwise the username and password come from flags, SPECK_PASSWORD,
or an interactive prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget cached credentials",
	RunE:  runLogout,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for the configured scopes",
	RunE:  runToken,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (default: $SPECK_PASSWORD or prompt)")
	loginCmd.Flags().BoolVar(&loginFresh, "fresh", false, "forget cached credentials first")
	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "do not ask for confirmation")
	tokenCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (default: $SPECK_PASSWORD or prompt)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(tokenCmd)
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if loginFresh {
		if err := c.ForgetCredentials(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	res, err := login(ctx, c, argOrEmpty(args), loginPassword)
	if err != nil {
		return err
	}

	if JSONOutput() {
		if err := printJSON(res); err != nil {
			return err
		}
	} else if res.OK {
		Success("Logged in")
		if cfg.Cache.ShouldStore() && cfg.Cache.Backend != "none" {
			Muted("Credentials cached (%s)", cfg.Cache.Backend)
		}
	} else {
		Fail("Login failed: %s", res.Message)
	}

	if !res.OK {
		return fmt.Errorf("login failed")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if !logoutYes && !noInput {
		ok, err := wizard.NewInteractive().Confirm("Forget cached credentials?", true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	c, err := openCore()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.ForgetCredentials(); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "logged_out"})
	}
	Success("Cached credentials removed")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	c, err := openCore()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := mustLogin(ctx, c, "", loginPassword); err != nil {
		return err
	}

	tok, err := c.GetToken(ctx)
	if err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(tok)
	}
	if !Verbose() {
		fmt.Println(tok.AccessToken)
		return nil
	}
	Field("token", tok.AccessToken)
	Field("expires in", (time.Duration(tok.ExpiresInSeconds) * time.Second).String())
	Field("scopes", TruncateString(cfg.Session.ScopeString(), 60))
	return nil
}
