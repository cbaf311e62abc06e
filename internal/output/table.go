// Package output provides terminal output utilities for pkgstash.
//
// This package includes:
//   - Table rendering for backup files, repositories, catalog entries and bookmarks
//   - A spinner for long-running backup and restore operations
//   - Human-readable formatting for sizes and times
//
// Tables use plain characters and, when stdout is a terminal, ANSI colors.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgstash/internal/repo"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
	"github.com/blackwell-systems/pkgstash/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// BackupEntry is one backup file found on disk.
type BackupEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
	Details *snapshot.Details // nil when the file could not be read
	Err     error
}

// RenderBackupTable renders backup files, newest first.
func RenderBackupTable(entries []BackupEntry) string {
	if len(entries) == 0 {
		return "No backups found.\n"
	}

	sorted := make([]BackupEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return entryTime(sorted[i]).After(entryTime(sorted[j]))
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-16s %-6s %-9s %-10s %s\n",
		"File", "Created", "Repos", "Packages", "Bookmarks", "Size"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, e := range sorted {
		name := truncate(filepath.Base(e.Path), 28)
		size := formatSize(e.Size)

		if e.Details == nil {
			sb.WriteString(fmt.Sprintf("%-28s %-16s %s\n",
				name, formatRelativeTime(e.ModTime), colorize(colorRed, "unreadable")))
			continue
		}

		sb.WriteString(fmt.Sprintf("%-28s %-16s %-6d %-9d %-10d %s\n",
			name,
			formatRelativeTime(e.Details.Created),
			e.Details.Repos,
			e.Details.Packages,
			e.Details.Bookmarks,
			size))
	}

	return sb.String()
}

func entryTime(e BackupEntry) time.Time {
	if e.Details != nil && !e.Details.Created.IsZero() {
		return e.Details.Created
	}
	return e.ModTime
}

// RenderDetails renders the summary of a single backup file.
func RenderDetails(d *snapshot.Details) string {
	var sb strings.Builder

	created := "unknown"
	if !d.Created.IsZero() {
		created = fmt.Sprintf("%s (%s)", d.Created.Format("2006-01-02 15:04:05"), formatRelativeTime(d.Created))
	}

	sb.WriteString(fmt.Sprintf("Backup:       %s\n", d.Path))
	sb.WriteString(fmt.Sprintf("Created:      %s\n", created))
	sb.WriteString(fmt.Sprintf("Repositories: %d\n", d.Repos))
	sb.WriteString(fmt.Sprintf("Packages:     %d\n", d.Packages))
	sb.WriteString(fmt.Sprintf("Bookmarks:    %d\n", d.Bookmarks))
	return sb.String()
}

// RenderRepoTable renders registered repositories in registration order.
// Repositories outside naming are marked as unmanaged; they are not backed up.
func RenderRepoTable(repos []*store.Repository, naming repo.Naming) string {
	if len(repos) == 0 {
		return "No repositories registered.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-16s %-9s %-16s %s\n",
		"Alias", "Author", "State", "Refreshed", "URL"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	for _, r := range repos {
		author, managed := naming.Author(r.Alias)
		if !managed {
			author = colorize(colorGray, "(unmanaged)")
		}

		state := colorize(colorGreen, "enabled")
		if !r.Enabled {
			state = colorize(colorYellow, "disabled")
		}

		sb.WriteString(fmt.Sprintf("%-28s %-16s %-9s %-16s %s\n",
			truncate(r.Alias, 28),
			author,
			state,
			formatRelativeTime(r.RefreshedAt),
			r.URL))
	}

	return sb.String()
}

// RenderCatalogTable renders the packages offered by repositories.
func RenderCatalogTable(packages []*store.CatalogPackage) string {
	if len(packages) == 0 {
		return "Catalog is empty.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-14s %-8s %-24s %s\n",
		"Package", "Version", "Arch", "Repository", "Summary"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	for _, p := range packages {
		sb.WriteString(fmt.Sprintf("%-24s %-14s %-8s %-24s %s\n",
			truncate(p.Name, 24),
			truncate(p.Version, 14),
			p.Arch,
			truncate(p.Repo, 24),
			truncate(p.Summary, 40)))
	}

	return sb.String()
}

// RenderInstalledTable renders installed packages.
func RenderInstalledTable(packages []*store.InstalledPackage) string {
	if len(packages) == 0 {
		return "No packages installed.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-14s %-8s %-24s %s\n",
		"Package", "Version", "Arch", "From", "Installed"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, p := range packages {
		from := p.Repo
		if from == "" {
			from = "—"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-14s %-8s %-24s %s\n",
			truncate(p.Name, 24),
			truncate(p.Version, 14),
			p.Arch,
			truncate(from, 24),
			formatRelativeTime(p.InstalledAt)))
	}

	return sb.String()
}

// RenderBookmarks renders bookmark ids in order.
func RenderBookmarks(ids []uint32) string {
	if len(ids) == 0 {
		return "No bookmarks.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d bookmark(s):\n", len(ids)))
	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("  %d\n", id))
	}
	return sb.String()
}

// RenderNotFound lists packages a restore could not find in any managed
// repository.
func RenderNotFound(names []string) string {
	if len(names) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(colorize(colorYellow, fmt.Sprintf("%d package(s) not found in any repository:", len(names))))
	sb.WriteString("\n")
	for _, n := range names {
		sb.WriteString(fmt.Sprintf("  %s\n", n))
	}
	return sb.String()
}

func formatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if time.Since(t) < time.Minute && time.Since(t) >= 0 {
		return "just now"
	}
	return humanize.Time(t)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
