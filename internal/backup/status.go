package backup

import "strings"

// Status is the lifecycle state of the engine.
type Status int

const (
	Idle Status = iota
	BackingUp
	RestoringBookmarks
	RestoringRepos
	RefreshingRepos
	SearchingPackages
	InstallingPackages
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case BackingUp:
		return "backing up"
	case RestoringBookmarks:
		return "restoring bookmarks"
	case RestoringRepos:
		return "restoring repositories"
	case RefreshingRepos:
		return "refreshing repositories"
	case SearchingPackages:
		return "searching packages"
	case InstallingPackages:
		return "installing packages"
	default:
		return "unknown"
	}
}

// Items selects what a backup captures.
type Items uint

const (
	Repositories Items = 1 << iota
	InstalledPackages
	Bookmarks

	AllItems = Repositories | InstalledPackages | Bookmarks
)

// Has reports whether every item in other is selected.
func (i Items) Has(other Items) bool {
	return i&other == other
}

func (i Items) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	if i.Has(Repositories) {
		parts = append(parts, "repositories")
	}
	if i.Has(InstalledPackages) {
		parts = append(parts, "installed")
	}
	if i.Has(Bookmarks) {
		parts = append(parts, "bookmarks")
	}
	if i&^AllItems != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "+")
}
