// Package repo implements the repository registry: the set of software
// repositories the client knows about, which of them are enabled, and how
// managed repositories are named.
package repo

import (
	"fmt"
	"strings"
)

// Default naming for managed repositories.
const (
	DefaultPrefix      = "openrepos-"
	DefaultURLTemplate = "https://sailfish.openrepos.net/%s/personal/main"
)

// Naming derives repository aliases and URLs from author identifiers.
type Naming struct {
	Prefix      string
	URLTemplate string // must contain exactly one %s, replaced with the author
}

// DefaultNaming returns the naming used when no configuration overrides it.
func DefaultNaming() Naming {
	return Naming{Prefix: DefaultPrefix, URLTemplate: DefaultURLTemplate}
}

// Alias returns the repository alias for author.
func (n Naming) Alias(author string) string {
	return n.Prefix + author
}

// URL returns the repository URL for author.
func (n Naming) URL(author string) string {
	return fmt.Sprintf(n.URLTemplate, author)
}

// Author strips the managed prefix from alias. It returns false when the
// alias does not belong to a managed repository.
func (n Naming) Author(alias string) (string, bool) {
	if !n.IsManaged(alias) {
		return "", false
	}
	return alias[len(n.Prefix):], true
}

// IsManaged reports whether alias carries the managed prefix.
func (n Naming) IsManaged(alias string) bool {
	return strings.HasPrefix(alias, n.Prefix) && len(alias) > len(n.Prefix)
}
