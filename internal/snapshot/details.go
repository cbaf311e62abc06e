package snapshot

import (
	"fmt"
	"os"
	"time"
)

// Details summarizes a backup file without restoring it.
type Details struct {
	Path      string
	Created   time.Time // local time
	Repos     int
	Packages  int
	Bookmarks int
}

// Inspect opens the backup file at path and counts its entries.
func Inspect(path string) (*Details, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	f, err := Open(path)
	if err != nil {
		return nil, err
	}

	ids, invalid := f.Bookmarks()
	created := f.Created()
	if !created.IsZero() {
		created = created.Local()
	}

	return &Details{
		Path:      path,
		Created:   created,
		Repos:     len(f.Repos()),
		Packages:  len(f.Installed()),
		Bookmarks: len(ids) + len(invalid),
	}, nil
}
