package aur

import (
	"time"

	packageurl "github.com/package-url/packageurl-go"
)

// Package is one result record of the AUR RPC interface.
// Dependency lists are only populated by info requests.
type Package struct {
	ID             int     `json:"ID"`
	Name           string  `json:"Name"`
	PackageBaseID  int     `json:"PackageBaseID"`
	PackageBase    string  `json:"PackageBase"`
	Version        string  `json:"Version"`
	Description    string  `json:"Description"`
	URL            string  `json:"URL"`
	URLPath        string  `json:"URLPath"`
	NumVotes       int     `json:"NumVotes"`
	Popularity     float64 `json:"Popularity"`
	OutOfDate      *int64  `json:"OutOfDate"`
	Maintainer     string  `json:"Maintainer"`
	Submitter      string  `json:"Submitter"`
	FirstSubmitted int64   `json:"FirstSubmitted"`
	LastModified   int64   `json:"LastModified"`

	Depends       []string `json:"Depends,omitempty"`
	MakeDepends   []string `json:"MakeDepends,omitempty"`
	OptDepends    []string `json:"OptDepends,omitempty"`
	CheckDepends  []string `json:"CheckDepends,omitempty"`
	Conflicts     []string `json:"Conflicts,omitempty"`
	Provides      []string `json:"Provides,omitempty"`
	Replaces      []string `json:"Replaces,omitempty"`
	Groups        []string `json:"Groups,omitempty"`
	License       []string `json:"License,omitempty"`
	Keywords      []string `json:"Keywords,omitempty"`
	CoMaintainers []string `json:"CoMaintainers,omitempty"`
}

// IsOutOfDate reports whether the package has been flagged out of date
func (p *Package) IsOutOfDate() bool {
	return p.OutOfDate != nil
}

// OutOfDateSince returns when the package was flagged, or the zero time
func (p *Package) OutOfDateSince() time.Time {
	if p.OutOfDate == nil {
		return time.Time{}
	}
	return time.Unix(*p.OutOfDate, 0)
}

// FirstSubmittedTime returns FirstSubmitted as a time
func (p *Package) FirstSubmittedTime() time.Time {
	return time.Unix(p.FirstSubmitted, 0)
}

// LastModifiedTime returns LastModified as a time
func (p *Package) LastModifiedTime() time.Time {
	return time.Unix(p.LastModified, 0)
}

// IsOrphan reports whether the package has no maintainer
func (p *Package) IsOrphan() bool {
	return p.Maintainer == ""
}

// PURL returns the package URL, e.g. pkg:alpm/aur/yay@12.4.2-1
func (p *Package) PURL() string {
	return packageurl.NewPackageURL("alpm", "aur", p.Name, p.Version, nil, "").ToString()
}

// PageURL returns the package page on the AUR web interface
func (p *Package) PageURL(baseURL string) string {
	return baseURL + "/packages/" + p.Name
}

// SnapshotURL returns the snapshot tarball URL
func (p *Package) SnapshotURL(baseURL string) string {
	if p.URLPath == "" {
		return ""
	}
	return baseURL + p.URLPath
}

// response is the RPC envelope shared by every request type
type response struct {
	Version     int       `json:"version"`
	Type        string    `json:"type"`
	ResultCount int       `json:"resultcount"`
	Results     []Package `json:"results"`
	Error       string    `json:"error,omitempty"`
}

// SearchBy selects the field a search query is matched against
type SearchBy string

const (
	ByName          SearchBy = "name"
	ByNameDesc      SearchBy = "name-desc"
	ByMaintainer    SearchBy = "maintainer"
	ByDepends       SearchBy = "depends"
	ByMakeDepends   SearchBy = "makedepends"
	ByOptDepends    SearchBy = "optdepends"
	ByCheckDepends  SearchBy = "checkdepends"
	BySubmitter     SearchBy = "submitter"
	ByProvides      SearchBy = "provides"
	ByConflicts     SearchBy = "conflicts"
	ByReplaces      SearchBy = "replaces"
	ByGroups        SearchBy = "groups"
	ByKeywords      SearchBy = "keywords"
	ByCoMaintainers SearchBy = "comaintainers"
)

// SearchFields lists every accepted SearchBy value
var SearchFields = []SearchBy{
	ByName, ByNameDesc, ByMaintainer, ByDepends, ByMakeDepends, ByOptDepends,
	ByCheckDepends, BySubmitter, ByProvides, ByConflicts, ByReplaces, ByGroups,
	ByKeywords, ByCoMaintainers,
}

// Valid reports whether s is a field the RPC interface accepts
func (s SearchBy) Valid() bool {
	for _, f := range SearchFields {
		if s == f {
			return true
		}
	}
	return false
}
