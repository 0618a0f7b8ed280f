package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/obentoo/qmaur/internal/aur"
	"github.com/obentoo/qmaur/internal/common/output"
)

// infoField is one "Key : Value" row of the details view
type infoField struct {
	key   string
	value string
}

func listValue(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, "  ")
}

func textValue(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func timeValue(t time.Time) string {
	return t.UTC().Format(time.RFC1123)
}

// infoFields lists the rows shown for a package, in display order
func infoFields(p aur.Package, baseURL string) []infoField {
	outOfDate := "No"
	if p.IsOutOfDate() {
		outOfDate = "Yes (since " + timeValue(p.OutOfDateSince()) + ")"
	}

	return []infoField{
		{"Repository", "aur"},
		{"Name", p.Name},
		{"Package Base", textValue(p.PackageBase)},
		{"Version", p.Version},
		{"Description", textValue(p.Description)},
		{"URL", textValue(p.URL)},
		{"AUR URL", p.PageURL(baseURL)},
		{"Package URL", p.PURL()},
		{"Groups", listValue(p.Groups)},
		{"Licenses", listValue(p.License)},
		{"Provides", listValue(p.Provides)},
		{"Depends On", listValue(p.Depends)},
		{"Make Deps", listValue(p.MakeDepends)},
		{"Check Deps", listValue(p.CheckDepends)},
		{"Optional Deps", listValue(p.OptDepends)},
		{"Conflicts With", listValue(p.Conflicts)},
		{"Replaces", listValue(p.Replaces)},
		{"Keywords", listValue(p.Keywords)},
		{"Maintainer", textValue(p.Maintainer)},
		{"Co-Maintainers", listValue(p.CoMaintainers)},
		{"Submitter", textValue(p.Submitter)},
		{"Votes", strconv.Itoa(p.NumVotes)},
		{"Popularity", fmt.Sprintf("%.2f", p.Popularity)},
		{"First Submitted", timeValue(p.FirstSubmittedTime())},
		{"Last Modified", timeValue(p.LastModifiedTime())},
		{"Out-of-date", outOfDate},
		{"Snapshot URL", textValue(p.SnapshotURL(baseURL))},
	}
}

// FormatInfo renders the details view of a package as aligned
// "Key : Value" rows followed by a blank line
func FormatInfo(p aur.Package, baseURL string) string {
	fields := infoFields(p, baseURL)

	keyWidth := 0
	for _, f := range fields {
		keyWidth = max(keyWidth, len(f.key))
	}

	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(output.Sprint(output.Header, output.PadRight(f.key, keyWidth)))
		sb.WriteString(" : ")
		sb.WriteString(f.value)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// WriteInfo writes the details view of each package
func WriteInfo(w io.Writer, pkgs []aur.Package, baseURL string) error {
	for _, p := range pkgs {
		if _, err := io.WriteString(w, FormatInfo(p, baseURL)); err != nil {
			return err
		}
	}
	return nil
}

// MissingNames returns the requested names absent from pkgs, in request order
func MissingNames(requested []string, pkgs []aur.Package) []string {
	found := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		found[p.Name] = true
	}
	var missing []string
	for _, name := range requested {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
