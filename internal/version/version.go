// Package version orders package version strings the way RPM does.
//
// A version string has the form [epoch:]version[-release]. Epochs compare
// numerically; version and release compare segment by segment, where a
// segment is a maximal run of digits or of letters. Numeric segments compare
// numerically and always sort after alphabetic ones. A '~' sorts before
// anything, including the end of the string, so "1.0~rc1" < "1.0".
//
// Strings with no alphanumeric characters at all (including the empty string)
// are unparsable. They sort below every parsable version and equal each other.
package version

import (
	"strconv"
	"strings"
)

// Version is a parsed package version.
type Version struct {
	Epoch   uint64
	Version string
	Release string
	valid   bool
}

// Parse splits s into epoch, version and release. It never fails; check
// Valid to find out whether s was usable.
func Parse(s string) Version {
	s = strings.TrimSpace(s)
	if !hasAlnum(s) {
		return Version{}
	}

	v := Version{valid: true}
	if idx := strings.IndexByte(s, ':'); idx > 0 {
		if epoch, err := strconv.ParseUint(s[:idx], 10, 64); err == nil {
			v.Epoch = epoch
			s = s[idx+1:]
		}
	}

	if idx := strings.LastIndexByte(s, '-'); idx >= 0 {
		v.Version = s[:idx]
		v.Release = s[idx+1:]
	} else {
		v.Version = s
	}
	return v
}

// Valid reports whether the version was parsable.
func (v Version) Valid() bool {
	return v.valid
}

// String reassembles the version in [epoch:]version[-release] form.
func (v Version) String() string {
	if !v.valid {
		return ""
	}
	var sb strings.Builder
	if v.Epoch > 0 {
		sb.WriteString(strconv.FormatUint(v.Epoch, 10))
		sb.WriteByte(':')
	}
	sb.WriteString(v.Version)
	if v.Release != "" {
		sb.WriteByte('-')
		sb.WriteString(v.Release)
	}
	return sb.String()
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	switch {
	case !v.valid && !o.valid:
		return 0
	case !v.valid:
		return -1
	case !o.valid:
		return 1
	}

	if v.Epoch != o.Epoch {
		if v.Epoch < o.Epoch {
			return -1
		}
		return 1
	}
	if c := compareSegments(v.Version, o.Version); c != 0 {
		return c
	}
	// A missing release is not an opinion about the release.
	if v.Release == "" || o.Release == "" {
		return 0
	}
	return compareSegments(v.Release, o.Release)
}

// Less reports whether v is strictly older than o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Compare parses both strings and compares them.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

func compareSegments(a, b string) int {
	if a == b {
		return 0
	}

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for i < len(a) && !isAlnum(a[i]) && a[i] != '~' {
			i++
		}
		for j < len(b) && !isAlnum(b[j]) && b[j] != '~' {
			j++
		}

		if (i < len(a) && a[i] == '~') || (j < len(b) && b[j] == '~') {
			if i >= len(a) || a[i] != '~' {
				return 1
			}
			if j >= len(b) || b[j] != '~' {
				return -1
			}
			i++
			j++
			continue
		}

		if i >= len(a) || j >= len(b) {
			break
		}

		si, sj := i, j
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

		segA, segB := a[si:i], b[sj:j]
		if segB == "" {
			// Segment types differ; numbers are newer than letters.
			if numeric {
				return 1
			}
			return -1
		}

		var c int
		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) < len(segB) {
					return -1
				}
				return 1
			}
		}
		c = strings.Compare(segA, segB)
		if c != 0 {
			return c
		}
	}

	switch {
	case i >= len(a) && j >= len(b):
		return 0
	case i >= len(a):
		return -1
	default:
		return 1
	}
}

func hasAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
