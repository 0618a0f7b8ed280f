package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/logger"
	"github.com/obentoo/qmaur/internal/report"
)

// ErrNoPackagesFound is returned when none of the requested names exist
var ErrNoPackagesFound = errors.New("no packages found")

var infoCmd = &cobra.Command{
	Use:   "info <NAME>...",
	Short: "Show details of AUR packages",
	Long: `Show the AUR metadata of one or more packages.

Names that are not in the AUR produce a warning. The command fails
only when none of the names were found.

Examples:
  qmaur info yay
  qmaur info yay paru`,
	Args: cobra.MinimumNArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	lookup := newLookup(cfg)
	if err := showInfo(cmd.Context(), os.Stdout, lookup, args, lookup.BaseURL()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// showInfo looks up names and writes the details of every package found
func showInfo(ctx context.Context, w io.Writer, lookup aur.Lookup, names []string, baseURL string) error {
	pkgs, err := lookup.Info(ctx, names)
	if err != nil {
		return fmt.Errorf("info lookup failed: %w", err)
	}

	for _, name := range report.MissingNames(names, pkgs) {
		logger.Warn("package %s was not found in AUR", name)
	}
	if len(pkgs) == 0 {
		return ErrNoPackagesFound
	}

	return report.WriteInfo(w, pkgs, baseURL)
}
