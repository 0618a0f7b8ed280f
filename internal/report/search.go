package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/output"
)

// Search result orderings
const (
	SortNone       = "none"
	SortName       = "name"
	SortVotes      = "votes"
	SortPopularity = "popularity"
	SortRelevance  = "relevance"
)

// SortModes lists every accepted ordering
var SortModes = []string{SortNone, SortName, SortVotes, SortPopularity, SortRelevance}

// ValidSortMode reports whether mode is a known ordering
func ValidSortMode(mode string) bool {
	for _, m := range SortModes {
		if mode == m {
			return true
		}
	}
	return false
}

// packageNames adapts a package slice to fuzzy.Source
type packageNames []aur.Package

func (p packageNames) String(i int) string { return p[i].Name }
func (p packageNames) Len() int            { return len(p) }

// SortSearch returns pkgs ordered by mode. The input slice is not modified.
// Relevance ranks names by fuzzy match against query; names that do not
// match at all keep their server order after the matches.
func SortSearch(pkgs []aur.Package, mode, query string) []aur.Package {
	sorted := make([]aur.Package, len(pkgs))
	copy(sorted, pkgs)

	switch mode {
	case SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
	case SortVotes:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].NumVotes > sorted[j].NumVotes
		})
	case SortPopularity:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Popularity > sorted[j].Popularity
		})
	case SortRelevance:
		matches := fuzzy.FindFrom(query, packageNames(pkgs))
		seen := make(map[int]bool, len(matches))
		ranked := make([]aur.Package, 0, len(pkgs))
		for _, m := range matches {
			ranked = append(ranked, pkgs[m.Index])
			seen[m.Index] = true
		}
		for i, p := range pkgs {
			if !seen[i] {
				ranked = append(ranked, p)
			}
		}
		sorted = ranked
	}

	return sorted
}

// SearchOptions controls search result rendering
type SearchOptions struct {
	// Width is the column budget for wrapped descriptions
	Width int
	// Installed maps installed package names to their local version
	Installed map[string]string
	// NamesOnly prints bare package names, one per line
	NamesOnly bool
}

// FormatSearchEntry renders one search result in the two-line layout:
//
//	aur/<name> <version> (+<votes> <popularity>) [flags]
//	    <description>
func FormatSearchEntry(p aur.Package, opts SearchOptions) string {
	if opts.NamesOnly {
		return p.Name
	}

	var sb strings.Builder
	sb.WriteString(output.FormatPackage("aur", p.Name))
	sb.WriteString(" ")
	sb.WriteString(output.Sprint(output.Version, p.Version))
	sb.WriteString(fmt.Sprintf(" (+%d %.2f)", p.NumVotes, p.Popularity))

	if p.IsOrphan() {
		sb.WriteString(" " + output.Sprint(output.Warning, "(Orphaned)"))
	}
	if p.IsOutOfDate() {
		sb.WriteString(" " + output.Sprintf(output.Error, "(Out-of-date: %s)", p.OutOfDateSince().UTC().Format("2006-01-02")))
	}
	if local, ok := opts.Installed[p.Name]; ok {
		if local == p.Version {
			sb.WriteString(" " + output.Sprint(output.Info, "[installed]"))
		} else {
			sb.WriteString(" " + output.Sprintf(output.Info, "[installed: %s]", local))
		}
	}

	width := opts.Width
	if width <= 0 {
		width = output.DefaultWidth
	}
	desc := p.Description
	if desc == "" {
		desc = "(no description)"
	}
	sb.WriteString("\n")
	sb.WriteString(output.Wrap(desc, width, "    "))

	return sb.String()
}

// WriteSearch writes every result in order
func WriteSearch(w io.Writer, pkgs []aur.Package, opts SearchOptions) error {
	for _, p := range pkgs {
		if _, err := fmt.Fprintln(w, FormatSearchEntry(p, opts)); err != nil {
			return err
		}
	}
	return nil
}
