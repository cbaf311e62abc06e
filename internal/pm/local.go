package pm

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/pkgstash/internal/store"
)

// Local runs transactions against the catalog and installed tables of the
// state database. It needs no system package manager.
type Local struct {
	store *store.Store
	now   func() time.Time
}

// NewLocal creates a Local transactor over st.
func NewLocal(st *store.Store) *Local {
	return &Local{store: st, now: time.Now}
}

// NewTransaction returns a fresh single-use transaction.
func (l *Local) NewTransaction() Transaction {
	return &localTransaction{local: l}
}

// InstalledPackages returns the names of installed packages.
func (l *Local) InstalledPackages(ctx context.Context) ([]string, error) {
	pkgs, err := l.store.ListInstalled()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	return names, nil
}

type localTransaction struct {
	once
	local *Local
}

func (t *localTransaction) RefreshCache(ctx context.Context) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		_, err := t.local.store.TouchEnabledRepositories(t.local.now())
		e.finish(err)
	}()
	return e.ch, nil
}

func (t *localTransaction) Resolve(ctx context.Context, names []string) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		e.finish(t.resolve(e, names))
	}()
	return e.ch, nil
}

func (t *localTransaction) resolve(e *emitter, names []string) error {
	for _, name := range names {
		if inst, err := t.local.store.GetInstalled(name); err == nil {
			id := ID{Name: inst.Name, Version: inst.Version, Arch: inst.Arch, Data: InstalledData}
			if !e.found(InfoInstalled, id.String(), "") {
				return e.ctx.Err()
			}
		}

		available, err := t.local.store.FindCatalogPackages(name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		for _, p := range available {
			id := ID{Name: p.Name, Version: p.Version, Arch: p.Arch, Data: p.Repo}
			if !e.found(InfoAvailable, id.String(), p.Summary) {
				return e.ctx.Err()
			}
		}
	}
	return nil
}

func (t *localTransaction) InstallPackages(ctx context.Context, ids []string) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		e.finish(t.install(ids))
	}()
	return e.ch, nil
}

func (t *localTransaction) install(ids []string) error {
	now := t.local.now()
	for _, raw := range ids {
		id, ok := ParseID(raw)
		if !ok {
			return fmt.Errorf("invalid package id %q", raw)
		}
		pkg := &store.InstalledPackage{
			Name:        id.Name,
			Version:     id.Version,
			Arch:        id.Arch,
			Repo:        id.Data,
			InstalledAt: now,
		}
		if err := t.local.store.InsertInstalled(pkg); err != nil {
			return err
		}
	}
	return nil
}
