package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/pkgstash/internal/snapshot"
)

// Backup writes the selected state to a new file at path. It returns once
// the backup has been accepted; completion is reported with BackedUp or
// BackupFailed.
func (e *Engine) Backup(path string, items Items) error {
	if path == "" {
		return ErrEmptyPath
	}
	if items == 0 || items&^AllItems != 0 {
		return ErrNoItems
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	if !e.acquire("backup") {
		return ErrBusy
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.log.Errorw("failed to create backup directory", "dir", dir, "error", err)
		e.release()
		e.emit(Event{Kind: BackupFailed, Path: path, Code: DirectoryError, Err: err})
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	go e.capture(path, items)
	return nil
}

// captured is what a backup read from the live system.
type captured struct {
	repos     []string
	disabled  []string
	installed []string
	bookmarks []uint32
}

func (e *Engine) capture(path string, items Items) {
	e.log.Debugw("starting backup", "path", path, "items", items.String())
	e.setStatus(BackingUp)

	var c captured
	g, ctx := errgroup.WithContext(context.Background())

	if items.Has(Repositories) {
		g.Go(func() error {
			repos, err := e.registry.Repos()
			if err != nil {
				return fmt.Errorf("failed to list repositories: %w", err)
			}
			for _, r := range repos {
				author, ok := e.naming.Author(r.Alias)
				if !ok {
					e.log.Debugw("skipping unmanaged repository", "alias", r.Alias)
					continue
				}
				c.repos = append(c.repos, author)
				if !r.Enabled {
					c.disabled = append(c.disabled, author)
				}
			}
			return nil
		})
	}

	if items.Has(InstalledPackages) {
		g.Go(func() error {
			names, err := e.inventory.InstalledPackages(ctx)
			if err != nil {
				return fmt.Errorf("failed to list installed packages: %w", err)
			}
			c.installed = names
			return nil
		})
	}

	if items.Has(Bookmarks) {
		g.Go(func() error {
			ids, err := e.bookmarks.List()
			if err != nil {
				return fmt.Errorf("failed to list bookmarks: %w", err)
			}
			c.bookmarks = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.log.Errorw("backup failed", "path", path, "error", err)
		e.finish(Event{Kind: BackupFailed, Path: path, Code: SourceError, Err: err})
		return
	}

	f := snapshot.Create(path)
	if items.Has(Repositories) {
		f.SetRepos(c.repos, c.disabled)
	}
	if items.Has(InstalledPackages) {
		f.SetInstalled(c.installed)
	}
	if items.Has(Bookmarks) {
		f.SetBookmarks(c.bookmarks)
	}
	f.SetCreated(e.now())

	if err := f.Save(); err != nil {
		e.log.Errorw("backup failed", "path", path, "error", err)
		e.finish(Event{Kind: BackupFailed, Path: path, Code: WriteError, Err: err})
		return
	}

	e.log.Debugw("finished backup", "path", path,
		"repos", len(c.repos), "installed", len(c.installed), "bookmarks", len(c.bookmarks))
	e.finish(Event{Kind: BackedUp, Path: path})
}
