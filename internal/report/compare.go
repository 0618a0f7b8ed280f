package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/obentoo/qmaur/internal/alpm"
	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/output"
	"github.com/obentoo/qmaur/internal/pacman"
)

// Status indicates the comparison result for one local package
type Status int

const (
	// StatusUpToDate means local version equals the AUR version
	StatusUpToDate Status = iota
	// StatusUpdate means the AUR carries a newer version
	StatusUpdate
	// StatusLocalNewer means the versions differ but the local one sorts higher
	StatusLocalNewer
	// StatusNotFound means the package is absent from the AUR
	StatusNotFound
)

// String returns a human-readable status
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up-to-date"
	case StatusUpdate:
		return "update"
	case StatusLocalNewer:
		return "local-newer"
	case StatusNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Differs reports whether the status produces a report line
func (s Status) Differs() bool {
	return s != StatusUpToDate
}

// Result is the comparison of one local package
type Result struct {
	Name          string
	LocalVersion  string
	RemoteVersion string
	Status        Status
}

// Report contains the full comparison
type Report struct {
	Total         int
	UpToDateCount int
	UpdateCount   int
	NewerCount    int
	NotFoundCount int
	Results       []Result // sorted by name
}

// Compare joins the local inventory with AUR metadata by name.
// Any difference between version strings is a difference; version
// ordering only decides between StatusUpdate and StatusLocalNewer.
func Compare(inv pacman.Inventory, remote []aur.Package) *Report {
	index := make(map[string]aur.Package, len(remote))
	for _, p := range remote {
		index[p.Name] = p
	}

	report := &Report{
		Total:   len(inv),
		Results: make([]Result, 0, len(inv)),
	}

	for name, local := range inv {
		result := Result{
			Name:         name,
			LocalVersion: local.Version,
		}

		remotePkg, ok := index[name]
		switch {
		case !ok:
			result.Status = StatusNotFound
			report.NotFoundCount++
		case remotePkg.Version == local.Version:
			result.RemoteVersion = remotePkg.Version
			result.Status = StatusUpToDate
			report.UpToDateCount++
		case alpm.Vercmp(local.Version, remotePkg.Version) > 0:
			result.RemoteVersion = remotePkg.Version
			result.Status = StatusLocalNewer
			report.NewerCount++
		default:
			result.RemoteVersion = remotePkg.Version
			result.Status = StatusUpdate
			report.UpdateCount++
		}

		report.Results = append(report.Results, result)
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Name < report.Results[j].Name
	})

	return report
}

// Differences returns the results that produce report lines
func (r *Report) Differences() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status.Differs() {
			out = append(out, res)
		}
	}
	return out
}

// FormatResult renders one result line:
//
//	<name> <local> -> <remote>
//	--package <name> was not found in AUR
//
// Up-to-date results render as an empty string.
func FormatResult(res Result) string {
	switch res.Status {
	case StatusNotFound:
		return output.Sprintf(output.NotFound, "--package %s was not found in AUR", res.Name)
	case StatusUpdate, StatusLocalNewer:
		return fmt.Sprintf("%s %s -> %s",
			output.Sprint(output.Package, res.Name),
			output.Sprint(statusColor(res.Status), res.LocalVersion),
			output.Sprint(output.Version, res.RemoteVersion))
	default:
		return ""
	}
}

func statusColor(s Status) *color.Color {
	switch s {
	case StatusUpdate:
		return output.Update
	case StatusLocalNewer:
		return output.Newer
	case StatusNotFound:
		return output.NotFound
	default:
		return output.Dim
	}
}

// WriteUpdates writes one line per differing or missing package
func WriteUpdates(w io.Writer, r *Report) error {
	for _, res := range r.Differences() {
		if _, err := fmt.Fprintln(w, FormatResult(res)); err != nil {
			return err
		}
	}
	return nil
}

// FormatSummary renders the counters of a report
func FormatSummary(r *Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Foreign packages: %d\n", r.Total))
	sb.WriteString(fmt.Sprintf("Up to date: %s\n", output.Sprintf(output.Success, "%d", r.UpToDateCount)))
	if r.UpdateCount > 0 {
		sb.WriteString(fmt.Sprintf("Updates available: %s\n", output.Sprintf(output.Update, "%d", r.UpdateCount)))
	}
	if r.NewerCount > 0 {
		sb.WriteString(fmt.Sprintf("Newer than AUR: %s\n", output.Sprintf(output.Newer, "%d", r.NewerCount)))
	}
	if r.NotFoundCount > 0 {
		sb.WriteString(fmt.Sprintf("Not in AUR: %s\n", output.Sprintf(output.NotFound, "%d", r.NotFoundCount)))
	}
	return sb.String()
}
