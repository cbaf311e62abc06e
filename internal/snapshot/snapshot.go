// Package snapshot reads and writes backup files.
//
// A backup file is a grouped key-value (INI) file:
//
//	created = 2024-05-01T10:00:00Z
//
//	[repos]
//	all      = alice,bob
//	disabled = bob
//
//	[packages]
//	installed = harbour-app,harbour-tool
//	bookmarks = 42,7
//
// Missing sections and keys read as empty lists. The created time must be
// RFC 3339; other encodings, such as the binary @DateTime(...) values QSettings
// writes, read as the zero time, which means "unknown".
package snapshot

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	sectionRepos    = "repos"
	sectionPackages = "packages"

	keyAll       = "all"
	keyDisabled  = "disabled"
	keyInstalled = "installed"
	keyBookmarks = "bookmarks"
	keyCreated   = "created"

	listDelim = ","

	// qtInvalid is how QSettings writes an empty list.
	qtInvalid = "@Invalid()"
)

// File is an open backup file.
type File struct {
	path string
	cfg  *ini.File
}

// Create returns an empty backup file that will be written to path by Save.
func Create(path string) *File {
	return &File{path: path, cfg: ini.Empty()}
}

// Open loads the backup file at path.
func Open(path string) (*File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load backup file %s: %w", path, err)
	}
	return &File{path: path, cfg: cfg}, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Repos returns the repository author identifiers in stored order.
func (f *File) Repos() []string {
	return f.list(sectionRepos, keyAll)
}

// Disabled returns the author identifiers of disabled repositories.
func (f *File) Disabled() []string {
	return f.list(sectionRepos, keyDisabled)
}

// Installed returns the installed package names.
func (f *File) Installed() []string {
	return f.list(sectionPackages, keyInstalled)
}

// Bookmarks returns the bookmarked ids. Values that are not valid ids are
// returned separately so callers can report them.
func (f *File) Bookmarks() (ids []uint32, invalid []string) {
	for _, v := range f.list(sectionPackages, keyBookmarks) {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			invalid = append(invalid, v)
			continue
		}
		ids = append(ids, uint32(id))
	}
	return ids, invalid
}

// Created returns the capture time in UTC, or the zero time if the file
// does not record one or records it in a format other than RFC 3339.
func (f *File) Created() time.Time {
	if !f.cfg.Section("").HasKey(keyCreated) {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, f.cfg.Section("").Key(keyCreated).String())
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// SetRepos stores the repository lists.
func (f *File) SetRepos(all, disabled []string) {
	f.setList(sectionRepos, keyAll, all)
	f.setList(sectionRepos, keyDisabled, disabled)
}

// SetInstalled stores the installed package names.
func (f *File) SetInstalled(names []string) {
	f.setList(sectionPackages, keyInstalled, names)
}

// SetBookmarks stores the bookmarked ids.
func (f *File) SetBookmarks(ids []uint32) {
	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = strconv.FormatUint(uint64(id), 10)
	}
	f.setList(sectionPackages, keyBookmarks, values)
}

// SetCreated stores the capture time, converted to UTC.
func (f *File) SetCreated(t time.Time) {
	f.cfg.Section("").Key(keyCreated).SetValue(t.UTC().Format(time.RFC3339))
}

// Save writes the file. It refuses to overwrite an existing file.
func (f *File) Save() error {
	out, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := f.cfg.WriteTo(out); err != nil {
		out.Close()
		os.Remove(f.path)
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(f.path)
		return fmt.Errorf("failed to close backup file: %w", err)
	}
	return nil
}

func (f *File) list(section, key string) []string {
	sec, err := f.cfg.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return nil
	}

	raw := strings.TrimSpace(sec.Key(key).String())
	if raw == "" || raw == qtInvalid {
		return nil
	}

	var values []string
	for _, v := range strings.Split(raw, listDelim) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func (f *File) setList(section, key string, values []string) {
	f.cfg.Section(section).Key(key).SetValue(strings.Join(values, listDelim))
}
