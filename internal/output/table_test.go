package output

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/pkgstash/internal/repo"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
	"github.com/blackwell-systems/pkgstash/internal/store"
)

func TestRenderBackupTable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		entries  []BackupEntry
		contains []string
	}{
		{
			name:     "empty",
			contains: []string{"No backups found"},
		},
		{
			name: "readable",
			entries: []BackupEntry{
				{
					Path: "/backups/2024-05-01-100000.ini",
					Size: 2048,
					Details: &snapshot.Details{
						Created:   now.Add(-48 * time.Hour),
						Repos:     3,
						Packages:  12,
						Bookmarks: 4,
					},
				},
			},
			contains: []string{"2024-05-01-100000.ini", "2 days ago", "12", "2.0 kB"},
		},
		{
			name: "unreadable",
			entries: []BackupEntry{
				{Path: "/backups/broken.ini", ModTime: now.Add(-time.Hour), Err: errors.New("bad")},
			},
			contains: []string{"broken.ini", "unreadable", "1 hour ago"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderBackupTable(tt.entries)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderBackupTable() missing %q in:\n%s", want, result)
				}
			}
		})
	}
}

func TestRenderBackupTable_NewestFirst(t *testing.T) {
	now := time.Now()
	entries := []BackupEntry{
		{Path: "/b/old.ini", Details: &snapshot.Details{Created: now.Add(-72 * time.Hour)}},
		{Path: "/b/new.ini", Details: &snapshot.Details{Created: now.Add(-time.Hour)}},
		{Path: "/b/mid.ini", ModTime: now.Add(-24 * time.Hour)},
	}

	result := RenderBackupTable(entries)
	iNew := strings.Index(result, "new.ini")
	iMid := strings.Index(result, "mid.ini")
	iOld := strings.Index(result, "old.ini")
	if !(iNew < iMid && iMid < iOld) {
		t.Errorf("Expected newest first, got:\n%s", result)
	}
}

func TestRenderDetails(t *testing.T) {
	d := &snapshot.Details{
		Path:      "/backups/a.ini",
		Created:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
		Repos:     2,
		Packages:  5,
		Bookmarks: 1,
	}

	result := RenderDetails(d)
	for _, want := range []string{"/backups/a.ini", "2024-05-01 10:00:00", "Repositories: 2", "Packages:     5", "Bookmarks:    1"} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderDetails() missing %q in:\n%s", want, result)
		}
	}

	if !strings.Contains(RenderDetails(&snapshot.Details{}), "Created:      unknown") {
		t.Error("Expected unknown creation time for zero Created")
	}
}

func TestRenderRepoTable(t *testing.T) {
	if got := RenderRepoTable(nil, repo.DefaultNaming()); !strings.Contains(got, "No repositories") {
		t.Errorf("RenderRepoTable(nil) = %q", got)
	}

	repos := []*store.Repository{
		{Alias: "openrepos-alice", URL: "https://sailfish.openrepos.net/alice/personal/main", Enabled: true},
		{Alias: "jolla", URL: "https://releases.jolla.com", Enabled: false, RefreshedAt: time.Now().Add(-3 * time.Hour)},
	}

	result := RenderRepoTable(repos, repo.DefaultNaming())
	for _, want := range []string{"openrepos-alice", "alice", "enabled", "never", "jolla", "(unmanaged)", "disabled", "3 hours ago"} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderRepoTable() missing %q in:\n%s", want, result)
		}
	}
	if strings.Index(result, "openrepos-alice") > strings.Index(result, "jolla") {
		t.Error("Expected registration order to be kept")
	}
}

func TestRenderCatalogAndInstalled(t *testing.T) {
	catalog := RenderCatalogTable([]*store.CatalogPackage{
		{Name: "harbour-app", Version: "1.2-1", Arch: "armv7hl", Repo: "openrepos-alice", Summary: "An app"},
	})
	for _, want := range []string{"harbour-app", "1.2-1", "armv7hl", "openrepos-alice", "An app"} {
		if !strings.Contains(catalog, want) {
			t.Errorf("RenderCatalogTable() missing %q in:\n%s", want, catalog)
		}
	}
	if !strings.Contains(RenderCatalogTable(nil), "Catalog is empty") {
		t.Error("Expected empty catalog message")
	}

	installed := RenderInstalledTable([]*store.InstalledPackage{
		{Name: "base", Version: "4.5", Arch: "noarch", InstalledAt: time.Now().Add(-24 * time.Hour)},
	})
	for _, want := range []string{"base", "4.5", "—", "1 day ago"} {
		if !strings.Contains(installed, want) {
			t.Errorf("RenderInstalledTable() missing %q in:\n%s", want, installed)
		}
	}
}

func TestRenderBookmarksAndNotFound(t *testing.T) {
	if got := RenderBookmarks(nil); got != "No bookmarks.\n" {
		t.Errorf("RenderBookmarks(nil) = %q", got)
	}
	if got := RenderBookmarks([]uint32{42, 7}); got != "2 bookmark(s):\n  42\n  7\n" {
		t.Errorf("RenderBookmarks() = %q", got)
	}

	if got := RenderNotFound(nil); got != "" {
		t.Errorf("RenderNotFound(nil) = %q, want empty", got)
	}
	got := RenderNotFound([]string{"gone"})
	if !strings.Contains(got, "1 package(s) not found") || !strings.Contains(got, "  gone\n") {
		t.Errorf("RenderNotFound() = %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"now", time.Now(), "just now"},
		{"days", time.Now().Add(-72 * time.Hour), "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"much-longer-name", 10, "much-lo..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
