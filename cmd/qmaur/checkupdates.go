package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/pacman"
	"github.com/obentoo/qmaur/internal/report"
	"github.com/obentoo/qmaur/internal/updates"
)

var (
	// checkIgnore lists package names skipped in addition to the config ignore list
	checkIgnore []string
	// checkSummary prints counters after the report
	checkSummary bool
)

var checkupdatesCmd = &cobra.Command{
	Use:   "checkupdates",
	Short: "Compare foreign packages with the AUR",
	Long: `Compare every foreign package (pacman -Qm) with its AUR version.

One line is printed per package whose version differs from the AUR:
  <name> <local version> -> <aur version>
and one notice per package that is not in the AUR:
  --package <name> was not found in AUR

Examples:
  qmaur checkupdates                       Check all foreign packages
  qmaur checkupdates --ignore foo,bar      Skip foo and bar
  qmaur checkupdates --summary             Print counters after the report`,
	Args: cobra.NoArgs,
	Run:  runCheckupdates,
}

func init() {
	// The root command runs the same check, so it takes the same flags
	for _, cmd := range []*cobra.Command{rootCmd, checkupdatesCmd} {
		cmd.Flags().StringSliceVar(&checkIgnore, "ignore", nil, "Comma-separated package names to skip")
		cmd.Flags().BoolVar(&checkSummary, "summary", false, "Print counters after the report")
	}

	rootCmd.AddCommand(checkupdatesCmd)
}

func runCheckupdates(cmd *cobra.Command, args []string) {
	opts := updates.Options{Ignore: cfg.IgnoreSet(checkIgnore...)}
	if err := checkUpdates(cmd.Context(), os.Stdout, newExecutor(cfg), newLookup(cfg), opts, checkSummary); err != nil {
		fail(err)
	}
}

// checkUpdates runs the check and writes the report to w.
// Nothing is written when the check fails.
func checkUpdates(ctx context.Context, w io.Writer, executor pacman.Executor, lookup aur.Lookup, opts updates.Options, summary bool) error {
	r, err := updates.Check(ctx, executor, lookup, opts)
	if err != nil {
		return err
	}

	if err := report.WriteUpdates(w, r); err != nil {
		return err
	}
	if summary {
		if _, err := io.WriteString(w, report.FormatSummary(r)); err != nil {
			return err
		}
	}
	return nil
}
