package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/logger"
	"github.com/obentoo/qmaur/internal/common/output"
	"github.com/obentoo/qmaur/internal/pacman"
	"github.com/obentoo/qmaur/internal/report"
)

var (
	// searchBy selects the field the query is matched against
	searchBy string
	// searchSort orders the results
	searchSort string
	// searchInstalled marks results that are installed locally
	searchInstalled bool
	// searchNamesOnly prints bare package names
	searchNamesOnly bool
)

var searchCmd = &cobra.Command{
	Use:   "search <QUERY>",
	Short: "Search the AUR",
	Long: `Search the AUR for packages matching a query.

Examples:
  qmaur search yay                         Search names and descriptions
  qmaur search --by maintainer jguer       Search by maintainer
  qmaur search --sort votes yay            Order by votes
  qmaur search --sort relevance yay        Order by fuzzy match on the name
  qmaur search --installed yay             Mark locally installed packages
  qmaur search --names-only yay            Print package names only`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchBy, "by", string(aur.ByNameDesc), "Field to search: "+searchFieldList())
	searchCmd.Flags().StringVar(&searchSort, "sort", report.SortNone, "Order results: "+strings.Join(report.SortModes, ", "))
	searchCmd.Flags().BoolVar(&searchInstalled, "installed", false, "Mark packages installed locally")
	searchCmd.Flags().BoolVar(&searchNamesOnly, "names-only", false, "Print package names only")

	searchCmd.RegisterFlagCompletionFunc("by", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		fields := make([]string, len(aur.SearchFields))
		for i, f := range aur.SearchFields {
			fields[i] = string(f)
		}
		return fields, cobra.ShellCompDirectiveNoFileComp
	})
	searchCmd.RegisterFlagCompletionFunc("sort", cobra.FixedCompletions(report.SortModes, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.AddCommand(searchCmd)
}

func searchFieldList() string {
	fields := make([]string, len(aur.SearchFields))
	for i, f := range aur.SearchFields {
		fields[i] = string(f)
	}
	return strings.Join(fields, ", ")
}

func runSearch(cmd *cobra.Command, args []string) {
	if !report.ValidSortMode(searchSort) {
		logger.Error("invalid sort mode %q: must be one of %s", searchSort, strings.Join(report.SortModes, ", "))
		os.Exit(1)
	}

	query := strings.Join(args, " ")
	opts := report.SearchOptions{
		Width:     output.TerminalWidth(),
		NamesOnly: searchNamesOnly,
	}

	var executor pacman.Executor
	if searchInstalled {
		executor = newExecutor(cfg)
	}

	if err := search(cmd.Context(), os.Stdout, newLookup(cfg), executor, query, aur.SearchBy(searchBy), searchSort, opts); err != nil {
		fail(err)
	}
}

// search runs the query and writes the sorted results to w.
// When executor is set, installed foreign packages are marked.
func search(ctx context.Context, w io.Writer, lookup aur.Lookup, executor pacman.Executor, query string, by aur.SearchBy, sortMode string, opts report.SearchOptions) error {
	pkgs, err := lookup.Search(ctx, query, by)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	logger.Debug("search %q by %s returned %d results", query, by, len(pkgs))

	if executor != nil {
		inv, err := executor.ForeignPackages(ctx)
		if err != nil {
			return fmt.Errorf("failed to read foreign packages: %w", err)
		}
		opts.Installed = make(map[string]string, len(inv))
		for name, p := range inv {
			opts.Installed[name] = p.Version
		}
	}

	if len(pkgs) == 0 {
		logger.Warn("no packages match %q", query)
		return nil
	}

	return report.WriteSearch(w, report.SortSearch(pkgs, sortMode, query), opts)
}
