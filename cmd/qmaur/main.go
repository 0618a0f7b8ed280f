package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/config"
	"github.com/obentoo/qmaur/internal/common/logger"
	"github.com/obentoo/qmaur/internal/common/output"
	"github.com/obentoo/qmaur/internal/common/version"
	"github.com/obentoo/qmaur/internal/pacman"
)

var (
	verbose    int
	quiet      int
	noColor    bool
	configPath string
	logFile    bool

	// cfg is loaded once before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qmaur",
	Short: "Check foreign packages against the AUR",
	Long: `qmaur lists the foreign packages installed with pacman (pacman -Qm),
looks them up in the Arch User Repository and reports version differences.
It can also search the AUR and show package details.

Without a subcommand qmaur runs checkupdates.`,
	Args:             cobra.NoArgs,
	Run:              runCheckupdates,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRun: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (repeat up to 3 times)")
	rootCmd.PersistentFlags().CountVarP(&quiet, "quiet", "q", "Decrease log verbosity (repeat up to 2 times)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Also write debug logs to the state directory")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func setup(cmd *cobra.Command, args []string) {
	if verbose > logger.MaxVerbose {
		logger.Error("-v may be given at most %d times", logger.MaxVerbose)
		os.Exit(1)
	}
	if quiet > logger.MaxQuiet {
		logger.Error("-q may be given at most %d times", logger.MaxQuiet)
		os.Exit(1)
	}
	logger.SetVerbosity(verbose, quiet)

	if logFile {
		if err := logger.EnableFileLogging(); err != nil {
			logger.Warn("file logging disabled: %v", err)
		}
	}

	var err error
	cfg, err = loadConfig()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	if noColor {
		output.NoColor()
	} else if err := output.SetColorMode(cfg.Color); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	logger.Debug("log level %s", logger.Default().GetLevel())
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		logger.Debug("using config %s", configPath)
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// newLookup builds the AUR client from the loaded configuration
func newLookup(c *config.Config) *aur.Client {
	ua := c.AUR.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	return aur.NewClient(
		aur.WithBaseURL(c.AUR.URL),
		aur.WithMaxRetries(c.AUR.MaxRetries),
		aur.WithUserAgent(ua),
	)
}

// fail logs err and exits 1. For a failed pacman run the captured stdout
// is logged too; stderr is already part of the error.
func fail(err error) {
	logger.Error("%v", err)

	var cmdErr *pacman.CommandError
	if errors.As(err, &cmdErr) {
		if stdout := strings.TrimSpace(cmdErr.Stdout); stdout != "" {
			logger.Error("pacman stdout:\n%s", stdout)
		}
	}
	os.Exit(1)
}

// newExecutor builds the pacman runner from the loaded configuration
func newExecutor(c *config.Config) *pacman.Runner {
	return pacman.NewRunner(c.Pacman.Path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
