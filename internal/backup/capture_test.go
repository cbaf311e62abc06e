package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/pkgstash/internal/repo"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
)

func TestBackupPreconditions(t *testing.T) {
	env := newTestEnv(t)

	existing := filepath.Join(t.TempDir(), "existing.ini")
	if err := os.WriteFile(existing, []byte("created = x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		items Items
		want  error
	}{
		{"EmptyPath", "", AllItems, ErrEmptyPath},
		{"NoItems", filepath.Join(t.TempDir(), "a.ini"), 0, ErrNoItems},
		{"UnknownItems", filepath.Join(t.TempDir(), "a.ini"), Items(1 << 5), ErrNoItems},
		{"FileExists", existing, AllItems, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.engine.Backup(tt.path, tt.items)
			if !errors.Is(err, tt.want) {
				t.Errorf("Backup() error = %v, want %v", err, tt.want)
			}
		})
	}

	env.assertQuiet(t)
	if env.engine.Status() != Idle {
		t.Errorf("Status() = %v, want idle", env.engine.Status())
	}
}

func TestBackupAllItems(t *testing.T) {
	env := newTestEnv(t)
	env.registry.repos = []repo.Repo{
		{Alias: "openrepos-alice", Enabled: true},
		{Alias: "jolla", Enabled: true},
		{Alias: "openrepos-bob", Enabled: false},
	}
	env.inventory.names = []string{"harbour-app", "harbour-tool"}
	env.bookmarks.ids = []uint32{42, 7}

	path := filepath.Join(t.TempDir(), "nested", "dir", "backup.ini")
	if err := env.engine.Backup(path, AllItems); err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}

	events := env.waitFor(t, BackedUp)
	if got := statuses(events); !equalStatuses(got, []Status{BackingUp, Idle}) {
		t.Errorf("statuses = %v, want [backing up idle]", got)
	}
	if events[len(events)-1].Path != path {
		t.Errorf("BackedUp path = %s, want %s", events[len(events)-1].Path, path)
	}
	env.assertQuiet(t)

	f, err := snapshot.Open(path)
	if err != nil {
		t.Fatalf("Failed to open backup: %v", err)
	}

	t.Run("ManagedReposOnly", func(t *testing.T) {
		all := f.Repos()
		if len(all) != 2 || all[0] != "alice" || all[1] != "bob" {
			t.Errorf("Repos() = %v, want [alice bob]", all)
		}
	})

	t.Run("DisabledSubsetOfAll", func(t *testing.T) {
		disabled := f.Disabled()
		if len(disabled) != 1 || disabled[0] != "bob" {
			t.Errorf("Disabled() = %v, want [bob]", disabled)
		}
		all := make(map[string]bool)
		for _, a := range f.Repos() {
			all[a] = true
		}
		for _, d := range disabled {
			if !all[d] {
				t.Errorf("disabled %s missing from all", d)
			}
		}
	})

	t.Run("Packages", func(t *testing.T) {
		if got := f.Installed(); len(got) != 2 || got[0] != "harbour-app" {
			t.Errorf("Installed() = %v", got)
		}
		ids, invalid := f.Bookmarks()
		if len(ids) != 2 || ids[0] != 42 || ids[1] != 7 || len(invalid) != 0 {
			t.Errorf("Bookmarks() = %v, %v", ids, invalid)
		}
	})

	t.Run("Details", func(t *testing.T) {
		d, err := env.engine.Details(path)
		if err != nil {
			t.Fatalf("Details() failed: %v", err)
		}
		if d.Repos != 2 || d.Packages != 2 || d.Bookmarks != 2 {
			t.Errorf("Details() = %+v, want 2/2/2", d)
		}
		if !d.Created.Equal(env.engine.now()) {
			t.Errorf("Created = %v, want %v", d.Created, env.engine.now())
		}
	})
}

func TestBackupSelectedItems(t *testing.T) {
	env := newTestEnv(t)
	env.registry.repos = []repo.Repo{{Alias: "openrepos-alice", Enabled: true}}
	env.inventory.names = []string{"harbour-app"}
	env.bookmarks.ids = []uint32{1, 2, 3}

	path := filepath.Join(t.TempDir(), "bookmarks.ini")
	if err := env.engine.Backup(path, Bookmarks); err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	env.waitFor(t, BackedUp)

	d, err := snapshot.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect() failed: %v", err)
	}
	if d.Repos != 0 || d.Packages != 0 || d.Bookmarks != 3 {
		t.Errorf("Inspect() = %+v, want only 3 bookmarks", d)
	}
}

func TestBackupEmptyState(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "empty.ini")
	if err := env.engine.Backup(path, AllItems); err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	env.waitFor(t, BackedUp)

	d, err := env.engine.Details(path)
	if err != nil {
		t.Fatalf("Details() failed: %v", err)
	}
	if d.Repos != 0 || d.Packages != 0 || d.Bookmarks != 0 {
		t.Errorf("Details() = %+v, want all zero", d)
	}
}

func TestBackupDirectoryError(t *testing.T) {
	env := newTestEnv(t)

	// A regular file where the parent directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(blocker, "backup.ini")

	if err := env.engine.Backup(path, AllItems); err == nil {
		t.Fatal("Expected error when directory cannot be created, got nil")
	}

	events := env.waitFor(t, BackupFailed)
	last := events[len(events)-1]
	if last.Code != DirectoryError {
		t.Errorf("Code = %v, want directory error", last.Code)
	}
	if len(statuses(events)) != 0 {
		t.Errorf("Expected no status change, got %v", statuses(events))
	}
	env.assertQuiet(t)

	// The guard must be free again.
	ok := filepath.Join(t.TempDir(), "ok.ini")
	if err := env.engine.Backup(ok, Bookmarks); err != nil {
		t.Errorf("Backup() after directory error failed: %v", err)
	}
	env.waitFor(t, BackedUp)
}

func TestBackupSourceError(t *testing.T) {
	env := newTestEnv(t)
	env.inventory.err = errors.New("inventory offline")

	path := filepath.Join(t.TempDir(), "backup.ini")
	if err := env.engine.Backup(path, AllItems); err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}

	events := env.waitFor(t, BackupFailed)
	if got := statuses(events); !equalStatuses(got, []Status{BackingUp, Idle}) {
		t.Errorf("statuses = %v, want [backing up idle]", got)
	}
	if last := events[len(events)-1]; last.Code != SourceError {
		t.Errorf("Code = %v, want source error", last.Code)
	}
	env.assertQuiet(t)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no backup file, got stat error %v", err)
	}
}

func TestBackupWhileBusy(t *testing.T) {
	env := newTestEnv(t)
	env.pm.gate = make(chan struct{})

	restorePath := writeSnapshot(t, snapshotContent{installed: []string{"harbour-app"}})
	if err := env.engine.Restore(restorePath); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	// Wait until the restore is parked inside the refresh transaction.
	for {
		events := env.waitFor(t, StatusChanged)
		if events[len(events)-1].Status == RefreshingRepos {
			break
		}
	}

	path := filepath.Join(t.TempDir(), "backup.ini")
	if err := env.engine.Backup(path, AllItems); !errors.Is(err, ErrBusy) {
		t.Errorf("Backup() error = %v, want ErrBusy", err)
	}
	if err := env.engine.Restore(restorePath); !errors.Is(err, ErrBusy) {
		t.Errorf("Restore() error = %v, want ErrBusy", err)
	}
	if env.engine.Status() != RefreshingRepos {
		t.Errorf("Status() = %v, want refreshing repositories", env.engine.Status())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Rejected backup must not create a file")
	}

	close(env.pm.gate)
	env.waitFor(t, Restored)
	env.assertQuiet(t)
}
