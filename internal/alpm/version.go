// Package alpm implements the package version ordering used by pacman.
package alpm

import (
	"strings"
)

// Version is a parsed [epoch:]pkgver[-pkgrel] string
type Version struct {
	Epoch  string // "0" when absent
	Pkgver string
	Pkgrel string // empty when absent
}

// String reassembles the version, omitting a zero epoch
func (v Version) String() string {
	s := v.Pkgver
	if v.Epoch != "" && v.Epoch != "0" {
		s = v.Epoch + ":" + s
	}
	if v.Pkgrel != "" {
		s += "-" + v.Pkgrel
	}
	return s
}

// ParseVersion splits a version string into epoch, pkgver and pkgrel.
// The epoch is the leading run of digits when followed by ':';
// the release is everything after the last '-'.
func ParseVersion(s string) Version {
	v := Version{Epoch: "0"}

	digits := 0
	for digits < len(s) && isDigit(s[digits]) {
		digits++
	}
	if digits < len(s) && s[digits] == ':' {
		if digits > 0 {
			v.Epoch = s[:digits]
		}
		s = s[digits+1:]
	}

	if idx := strings.LastIndexByte(s, '-'); idx >= 0 {
		v.Pkgrel = s[idx+1:]
		s = s[:idx]
	}
	v.Pkgver = s
	return v
}

// Vercmp compares two pacman version strings.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b
// A missing pkgrel on either side makes the release irrelevant, so
// "1.0" and "1.0-3" compare equal.
func Vercmp(a, b string) int {
	if a == b {
		return 0
	}

	va := ParseVersion(a)
	vb := ParseVersion(b)

	if cmp := rpmvercmp(va.Epoch, vb.Epoch); cmp != 0 {
		return cmp
	}
	if cmp := rpmvercmp(va.Pkgver, vb.Pkgver); cmp != 0 {
		return cmp
	}
	if va.Pkgrel != "" && vb.Pkgrel != "" {
		return rpmvercmp(va.Pkgrel, vb.Pkgrel)
	}
	return 0
}

// rpmvercmp compares alternating numeric and alphabetic segments.
// Numeric segments compare by value and sort after alphabetic ones;
// a longer separator run sorts later.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		startA, startB := i, j
		for i < len(a) && !isAlnum(a[i]) {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) {
			j++
		}
		if i >= len(a) || j >= len(b) {
			break
		}

		if sepA, sepB := i-startA, j-startB; sepA != sepB {
			if sepA < sepB {
				return -1
			}
			return 1
		}

		startA, startB = i, j
		numeric := isDigit(a[i])
		if numeric {
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
		} else {
			for i < len(a) && isAlpha(a[i]) {
				i++
			}
			for j < len(b) && isAlpha(b[j]) {
				j++
			}
		}

		segA, segB := a[startA:i], b[startB:j]

		// b has a segment of the other kind here
		if segB == "" {
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}

		if cmp := strings.Compare(segA, segB); cmp != 0 {
			return cmp
		}
	}

	doneA, doneB := i >= len(a), j >= len(b)
	if doneA && doneB {
		return 0
	}

	// Whichever side still has a non-alpha remainder is newer:
	// "1.0" > "1", but "1.0rc" < "1.0"
	if (doneA && !isAlpha(b[j])) || (!doneA && isAlpha(a[i])) {
		return -1
	}
	return 1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}
