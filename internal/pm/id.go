package pm

import "strings"

// InstalledData is the data field of a package id that refers to the copy
// already present on the system rather than to a repository.
const InstalledData = "installed"

// ID is a parsed package id of the form name;version;arch;data.
type ID struct {
	Name    string
	Version string
	Arch    string
	Data    string // repository alias, or InstalledData
}

// ParseID splits a package id. It returns false when s does not have four
// fields or the name is empty.
func ParseID(s string) (ID, bool) {
	parts := strings.Split(s, ";")
	if len(parts) != 4 || parts[0] == "" {
		return ID{}, false
	}
	return ID{Name: parts[0], Version: parts[1], Arch: parts[2], Data: parts[3]}, true
}

// String formats the id back into name;version;arch;data.
func (id ID) String() string {
	return id.Name + ";" + id.Version + ";" + id.Arch + ";" + id.Data
}

// Repo returns the repository the id refers to. Ids for installed packages
// may carry the origin after a colon ("installed:openrepos-foo"); Repo
// reports those as InstalledData.
func (id ID) Repo() string {
	if id.Data == InstalledData || strings.HasPrefix(id.Data, InstalledData+":") {
		return InstalledData
	}
	return id.Data
}
