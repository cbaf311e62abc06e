// Package backup captures and restores the user-configurable state of the
// package manager: managed repositories and their enabled flag, installed
// packages, and bookmarks.
//
// Backup writes a snapshot file on a goroutine. Restore reads one back on a
// goroutine, re-registers repositories and bookmarks, and then reconciles
// packages through four transaction stages:
//
//	refresh -> search -> reconcile/install -> finish
//
// Each stage starts only after the previous transaction has finished. The
// engine runs one operation at a time; overlapping calls are rejected with
// ErrBusy before anything is touched.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/blackwell-systems/pkgstash/internal/logging"
	"github.com/blackwell-systems/pkgstash/internal/pm"
	"github.com/blackwell-systems/pkgstash/internal/repo"
	"github.com/blackwell-systems/pkgstash/internal/snapshot"
)

var (
	ErrEmptyPath   = errors.New("a file path must be provided")
	ErrFileExists  = errors.New("backup file already exists")
	ErrFileMissing = errors.New("backup file does not exist")
	ErrNoItems     = errors.New("at least one backup item must be selected")
	ErrBusy        = errors.New("another backup operation is in progress")
)

// Registry is the repository registry the engine reads and repairs.
type Registry interface {
	Repos() ([]repo.Repo, error)
	AddRepo(alias, url string) error
	SetEnabled(alias string, enabled bool) error
}

// Inventory lists installed packages.
type Inventory interface {
	InstalledPackages(ctx context.Context) ([]string, error)
}

// BookmarkStore is the ordered set of bookmarked ids.
type BookmarkStore interface {
	Add(id uint32) error
	List() ([]uint32, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithNaming sets the managed repository naming (default repo.DefaultNaming).
func WithNaming(n repo.Naming) Option {
	return func(e *Engine) { e.naming = n }
}

// WithLogger sets the logger (default discards).
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithListener registers a listener at construction.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listeners = append(e.listeners, l) }
}

// Engine runs backups and restores.
type Engine struct {
	registry  Registry
	inventory Inventory
	bookmarks BookmarkStore
	pm        pm.Transactor
	naming    repo.Naming
	log       *logging.Logger
	now       func() time.Time

	mu        sync.Mutex
	status    Status
	listeners []Listener

	// running names the operation holding the in-flight guard; empty when
	// the engine is free. It is taken before any side effect.
	running string

	// Restore run state, guarded by mu and reset at the start of each restore.
	namesToSearch []string
	searchSet     map[string]bool
	pending       map[string][]string // name -> candidate package ids
	installed     map[string]string   // name -> installed version
	matched       map[string]bool     // names with a managed candidate
}

// New creates an Engine over its collaborators.
func New(registry Registry, inventory Inventory, bookmarks BookmarkStore, transactor pm.Transactor, opts ...Option) *Engine {
	e := &Engine{
		registry:  registry,
		inventory: inventory,
		bookmarks: bookmarks,
		pm:        transactor,
		naming:    repo.DefaultNaming(),
		log:       logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe adds a listener.
func (e *Engine) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Status returns the current status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// setStatus changes the status and notifies listeners. Setting the current
// value does nothing.
func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	if e.status == s {
		e.mu.Unlock()
		return
	}
	e.status = s
	e.mu.Unlock()

	e.emit(Event{Kind: StatusChanged, Status: s})
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// acquire takes the in-flight guard for op.
func (e *Engine) acquire(op string) bool {
	e.mu.Lock()
	running := e.running
	if running == "" {
		e.running = op
	}
	e.mu.Unlock()

	if running != "" {
		e.log.Warnw("rejecting overlapping operation", "operation", op, "running", running)
		return false
	}
	return true
}

// release frees the guard without touching the status.
func (e *Engine) release() {
	e.mu.Lock()
	e.running = ""
	e.mu.Unlock()
}

// finish returns to Idle and frees the guard in one step, then notifies
// listeners. A listener reacting to Idle may start the next operation.
func (e *Engine) finish(ev Event) {
	e.mu.Lock()
	changed := e.status != Idle
	e.status = Idle
	e.running = ""
	e.mu.Unlock()

	if changed {
		e.emit(Event{Kind: StatusChanged, Status: Idle})
	}
	e.emit(ev)
}

// Details summarizes the backup file at path without changing any state.
func (e *Engine) Details(path string) (*snapshot.Details, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	d, err := snapshot.Inspect(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
	}
	return d, err
}

// NotFound returns the names from the last restore's package list that no
// managed repository offered, in backup order.
func (e *Engine) NotFound() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var names []string
	for _, name := range e.namesToSearch {
		if !e.matched[name] {
			names = append(names, name)
		}
	}
	return names
}
