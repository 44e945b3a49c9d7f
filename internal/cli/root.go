package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tessro/speck/internal/config"
	speckerrors "github.com/tessro/speck/internal/errors"
)

var (
	cfgFile     string
	jsonOut     bool
	verbose     bool
	logLevel    string
	noInput     bool
	simAccounts []string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "speck",
	Short: "Drive a streaming session and player from the command line",
	Long: `Speck logs in to a streaming engine, fetches access tokens, and plays
tracks while printing the player's events as they arrive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (rootCmd -> initConfig -> resolveLogLevel -> rootCmd).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.speckrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "never prompt")
	rootCmd.PersistentFlags().StringArrayVar(&simAccounts, "account", []string{"demo:demo"}, "user:password accepted by the built-in engine")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Log.Level = resolveLogLevel(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// resolveLogLevel applies --verbose and an explicit --log-level over the
// configured level.
func resolveLogLevel(configured string) string {
	switch {
	case verbose:
		return "debug"
	case rootCmd.PersistentFlags().Changed("log-level"):
		return logLevel
	default:
		return configured
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, speckerrors.Format(err))
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
