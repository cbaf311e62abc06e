package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/blackwell-systems/pkgstash/internal/pm"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
	"github.com/blackwell-systems/pkgstash/internal/version"
)

// Restore applies the backup file at path. It returns once the restore has
// been accepted; Restored fires when the whole pipeline is done.
func (e *Engine) Restore(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileMissing, path)
	}

	if !e.acquire("restore") {
		return ErrBusy
	}

	go e.restore(path)
	return nil
}

func (e *Engine) restore(path string) {
	e.resetRun(nil)

	if err := e.applyFile(path); err != nil {
		e.log.Errorw("failed to read backup", "path", path, "error", err)
		e.emit(Event{Kind: RestoreFailed, Path: path, Err: err})
	}

	ctx := context.Background()
	var stage stageFunc = e.refreshStage
	for stage != nil {
		stage = stage(ctx)
	}

	e.log.Debugw("finished restoring", "path", path)
	e.finish(Event{Kind: Restored, Path: path})
}

func (e *Engine) resetRun(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.namesToSearch = names
	e.searchSet = make(map[string]bool, len(names))
	for _, n := range names {
		e.searchSet[n] = true
	}
	e.pending = make(map[string][]string)
	e.installed = make(map[string]string)
	e.matched = make(map[string]bool)
}

// applyFile reads the backup, restores bookmarks and repositories, and
// records the package names to reconcile.
func (e *Engine) applyFile(path string) error {
	f, err := snapshot.Open(path)
	if err != nil {
		return err
	}

	e.log.Debugw("reading installed packages", "path", f.Path())
	e.resetRun(f.Installed())

	e.log.Debugw("reading bookmarks")
	ids, invalid := f.Bookmarks()
	for _, v := range invalid {
		e.log.Warnw("skipping invalid bookmark", "value", v)
	}
	if len(ids) > 0 {
		e.log.Debugw("restoring bookmarks", "count", len(ids))
		e.setStatus(RestoringBookmarks)
		for _, id := range ids {
			if err := e.bookmarks.Add(id); err != nil {
				e.log.Errorw("failed to restore bookmark", "id", id, "error", err)
			}
		}
	}

	e.log.Debugw("reading repositories")
	authors := f.Repos()
	if len(authors) > 0 {
		e.log.Debugw("restoring repositories", "count", len(authors))
		e.setStatus(RestoringRepos)

		disabled := make(map[string]bool)
		for _, a := range f.Disabled() {
			disabled[a] = true
		}

		for _, author := range authors {
			alias := e.naming.Alias(author)
			if err := e.registry.AddRepo(alias, e.naming.URL(author)); err != nil {
				e.log.Errorw("failed to add repository", "alias", alias, "error", err)
				continue
			}
			if err := e.registry.SetEnabled(alias, !disabled[author]); err != nil {
				e.log.Errorw("failed to set repository state", "alias", alias, "error", err)
			}
		}
	}
	return nil
}

// stageFunc is one step of the reconciliation pipeline. It returns the next
// step, or nil when the pipeline should finish.
type stageFunc func(ctx context.Context) stageFunc

func (e *Engine) searchNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.namesToSearch...)
}

func (e *Engine) refreshStage(ctx context.Context) stageFunc {
	if len(e.searchNames()) == 0 {
		return nil
	}

	e.log.Debugw("refreshing repositories")
	e.setStatus(RefreshingRepos)
	e.await("refresh", func(t pm.Transaction) (<-chan pm.Event, error) {
		return t.RefreshCache(ctx)
	}, nil)
	return e.searchStage
}

func (e *Engine) searchStage(ctx context.Context) stageFunc {
	names := e.searchNames()
	if len(names) == 0 {
		return nil
	}

	e.log.Debugw("searching packages", "count", len(names))
	e.setStatus(SearchingPackages)
	e.await("search", func(t pm.Transaction) (<-chan pm.Event, error) {
		return t.Resolve(ctx, names)
	}, e.addPackage)
	return e.installStage
}

func (e *Engine) installStage(ctx context.Context) stageFunc {
	e.mu.Lock()
	ids := selectInstallBatch(e.pending, e.installed)
	e.pending = nil
	e.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	e.log.Debugw("installing packages", "count", len(ids))
	e.setStatus(InstallingPackages)
	e.await("install", func(t pm.Transaction) (<-chan pm.Event, error) {
		return t.InstallPackages(ctx, ids)
	}, nil)
	return nil
}

// await runs one operation on a fresh transaction and waits for it to
// finish. A transaction that cannot start counts as finished.
func (e *Engine) await(stage string, start func(pm.Transaction) (<-chan pm.Event, error), onFound func(pm.Event)) {
	events, err := start(e.pm.NewTransaction())
	if err != nil {
		e.log.Errorw("failed to start transaction", "stage", stage, "error", err)
		return
	}

	fin := pm.Wait(events, onFound)
	if fin.Exit != pm.ExitSuccess {
		e.log.Warnw("transaction did not succeed", "stage", stage, "exit", fin.Exit.String(), "error", fin.Err)
	}
}

// addPackage sorts a resolve result into the install candidates or the
// installed versions.
func (e *Engine) addPackage(ev pm.Event) {
	id, ok := pm.ParseID(ev.PackageID)
	if !ok {
		e.log.Debugw("ignoring malformed package id", "id", ev.PackageID)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.searchSet[id.Name] {
		return
	}

	switch repo := id.Repo(); {
	case e.naming.IsManaged(repo):
		if !version.Parse(id.Version).Valid() {
			e.log.Warnw("candidate has an unparsable version and ranks lowest", "id", ev.PackageID)
		}
		e.pending[id.Name] = append(e.pending[id.Name], ev.PackageID)
		e.matched[id.Name] = true
	case repo == pm.InstalledData:
		e.installed[id.Name] = id.Version
	}
}
