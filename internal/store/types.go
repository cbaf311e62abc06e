package store

import "time"

// Repository is a registered software repository.
type Repository struct {
	Alias       string
	URL         string
	Enabled     bool
	RefreshedAt time.Time // zero if never refreshed
}

// CatalogPackage is a package offered by a repository.
type CatalogPackage struct {
	Name    string
	Version string
	Arch    string
	Repo    string
	Summary string
}

// InstalledPackage is a package present on the system.
type InstalledPackage struct {
	Name        string
	Version     string
	Arch        string
	Repo        string // repository it was installed from, may be empty
	InstalledAt time.Time
}
