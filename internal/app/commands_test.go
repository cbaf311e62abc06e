package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgstash/internal/backup"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd *cobra.Command
		use string
	}{
		{backupCmd, "backup [file]"},
		{restoreCmd, "restore <file>"},
		{detailsCmd, "details <file>"},
		{listCmd, "list [dir]"},
		{reposCmd, "repos"},
		{bookmarksCmd, "bookmarks"},
		{catalogCmd, "catalog"},
		{watchCmd, "watch"},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			if tt.cmd.Use != tt.use {
				t.Errorf("Use = %q, want %q", tt.cmd.Use, tt.use)
			}
			if tt.cmd.Short == "" {
				t.Error("Short is empty")
			}
			if tt.cmd.Example == "" {
				t.Error("Example is empty")
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	tests := []struct {
		parent *cobra.Command
		want   []string
	}{
		{reposCmd, []string{"list", "add", "enable", "disable", "remove"}},
		{bookmarksCmd, []string{"list", "add", "remove"}},
		{catalogCmd, []string{"add", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.parent.Name(), func(t *testing.T) {
			found := make(map[string]bool)
			for _, c := range tt.parent.Commands() {
				found[c.Name()] = true
				if c.RunE == nil {
					t.Errorf("%s %s has no RunE", tt.parent.Name(), c.Name())
				}
			}
			for _, name := range tt.want {
				if !found[name] {
					t.Errorf("expected %s %s to be registered", tt.parent.Name(), name)
				}
			}
		})
	}
}

func TestBackupFlags(t *testing.T) {
	for _, name := range []string{"repos", "installed", "bookmarks"} {
		flag := backupCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not found", name)
			continue
		}
		if flag.DefValue != "false" {
			t.Errorf("flag %q default = %q, want false", name, flag.DefValue)
		}
	}
}

func TestCatalogAddArchDefault(t *testing.T) {
	flag := catalogAddCmd.Flags().Lookup("arch")
	if flag == nil {
		t.Fatal("flag arch not found")
	}
	if flag.DefValue != "noarch" {
		t.Errorf("arch default = %q, want noarch", flag.DefValue)
	}
}

func TestWatchCommandFlags(t *testing.T) {
	tests := []struct {
		flagName string
		hidden   bool
	}{
		{"daemon", false},
		{"daemon-child", true},
		{"pid-file", false},
		{"log-file", false},
		{"stop", false},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := watchCmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("expected flag '%s' to be registered", tt.flagName)
			}
			if flag.Hidden != tt.hidden {
				t.Errorf("flag '%s' hidden = %v, want %v", tt.flagName, flag.Hidden, tt.hidden)
			}
		})
	}
}

func TestSelectedItems(t *testing.T) {
	tests := []struct {
		name                       string
		repos, installed, bookmark bool
		want                       backup.Items
	}{
		{"no flags", false, false, false, backup.AllItems},
		{"repos", true, false, false, backup.Repositories},
		{"installed", false, true, false, backup.InstalledPackages},
		{"bookmarks", false, false, true, backup.Bookmarks},
		{"repos and bookmarks", true, false, true, backup.Repositories | backup.Bookmarks},
		{"all flags", true, true, true, backup.AllItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetFlags()
			backupFlagRepos, backupFlagInstalled, backupFlagBookmarks = tt.repos, tt.installed, tt.bookmark

			if got := selectedItems(); got != tt.want {
				t.Errorf("selectedItems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []uint32
		wantErr bool
	}{
		{"single", []string{"42"}, []uint32{42}, false},
		{"keeps order", []string{"9", "3", "7"}, []uint32{9, 3, 7}, false},
		{"max uint32", []string{"4294967295"}, []uint32{4294967295}, false},
		{"negative", []string{"1", "-1"}, nil, true},
		{"not a number", []string{"abc"}, nil, true},
		{"overflow", []string{"4294967296"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseIDs(%v) expected error, got %v", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseIDs(%v) error: %v", tt.args, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseIDs(%v) = %v, want %v", tt.args, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseIDs(%v) = %v, want %v", tt.args, got, tt.want)
					break
				}
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := confirm(strings.NewReader(tt.input), &out, "Proceed?")
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed? [y/N]") {
				t.Errorf("expected prompt, got %q", out.String())
			}
		})
	}
}

func TestDaemonFile(t *testing.T) {
	dir := setupCLI(t)

	got, err := daemonFile("", "watch.pid")
	if err != nil {
		t.Fatalf("daemonFile failed: %v", err)
	}
	want := filepath.Join(dir, ".pkgstash", "watch.pid")
	if got != want {
		t.Errorf("daemonFile = %q, want %q", got, want)
	}
	if info, err := os.Stat(filepath.Dir(want)); err != nil || !info.IsDir() {
		t.Errorf("expected data directory to be created: %v", err)
	}

	got, err = daemonFile("/tmp/custom.pid", "watch.pid")
	if err != nil {
		t.Fatalf("daemonFile with override failed: %v", err)
	}
	if got != "/tmp/custom.pid" {
		t.Errorf("daemonFile override = %q, want /tmp/custom.pid", got)
	}
}

func TestScanBackups(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		entries, err := scanBackups(filepath.Join(t.TempDir(), "nope"))
		if err != nil {
			t.Fatalf("scanBackups failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("ini files only", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.ini"), "created = 2024-05-01T10:00:00Z\n\n[packages]\nbookmarks = 1,2\n")
		writeFile(t, filepath.Join(dir, "a.ini"), "[repos]\nall = alice\n")
		writeFile(t, filepath.Join(dir, "notes.txt"), "not a backup")
		if err := os.Mkdir(filepath.Join(dir, "sub.ini"), 0755); err != nil {
			t.Fatal(err)
		}

		entries, err := scanBackups(dir)
		if err != nil {
			t.Fatalf("scanBackups failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if filepath.Base(entries[0].Path) != "a.ini" || filepath.Base(entries[1].Path) != "b.ini" {
			t.Errorf("unexpected order: %s, %s", entries[0].Path, entries[1].Path)
		}
		for _, e := range entries {
			if e.Err != nil {
				t.Errorf("%s: unexpected error %v", e.Path, e.Err)
			}
			if e.Size == 0 {
				t.Errorf("%s: expected size to be recorded", e.Path)
			}
		}
	})
}

func TestStatusMessage(t *testing.T) {
	statuses := []backup.Status{
		backup.BackingUp,
		backup.RestoringBookmarks,
		backup.RestoringRepos,
		backup.RefreshingRepos,
		backup.SearchingPackages,
		backup.InstallingPackages,
	}

	seen := make(map[string]bool)
	for _, s := range statuses {
		msg := statusMessage(s)
		if msg == "" || msg == "Working" {
			t.Errorf("statusMessage(%v) = %q, want a specific message", s, msg)
		}
		if seen[msg] {
			t.Errorf("statusMessage(%v) = %q is not unique", s, msg)
		}
		seen[msg] = true
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
