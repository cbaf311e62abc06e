package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/pkgstash/internal/logging"
)

// DefaultDebounce is how long the database must stay quiet before a backup.
const DefaultDebounce = 5 * time.Second

// backupLayout names automatic backup files.
const backupLayout = "2006-01-02-150405"

// BackupFunc writes a backup to path.
type BackupFunc func(path string) error

// Watcher backs up state whenever the database file settles after a change.
type Watcher struct {
	dbFile    string
	backupDir string
	backup    BackupFunc
	debounce  time.Duration
	log       *logging.Logger
	now       func() time.Time

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a backup is taken.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// New creates a Watcher for dbFile that writes backups into backupDir.
func New(dbFile, backupDir string, backup BackupFunc, opts ...Option) (*Watcher, error) {
	if dbFile == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if backupDir == "" {
		return nil, fmt.Errorf("backup directory cannot be empty")
	}
	if backup == nil {
		return nil, fmt.Errorf("backup function cannot be nil")
	}

	w := &Watcher{
		dbFile:    filepath.Clean(dbFile),
		backupDir: backupDir,
		backup:    backup,
		debounce:  DefaultDebounce,
		log:       logging.NewNop(),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("watcher already started")
	}
	if w.stopped {
		return fmt.Errorf("watcher has been stopped")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	dir := filepath.Dir(w.dbFile)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Debugw("watching database directory", "dir", dir, "file", filepath.Base(w.dbFile))

	w.fsw = fsw
	w.started = true

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts the watcher and waits for its goroutine. A pending debounced
// backup is dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	fsw := w.fsw
	w.mu.Unlock()

	w.wg.Wait()

	if fsw != nil {
		if err := fsw.Close(); err != nil {
			return fmt.Errorf("failed to close filesystem watcher: %w", err)
		}
	}
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("database changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Errorw("filesystem watcher error", "error", err)

		case <-timer.C:
			w.trigger()

		case <-w.stopCh:
			return
		}
	}
}

// relevant reports whether event is a content change of the database or of
// its rollback journal or write-ahead log. The -shm index changes on reads
// too and is ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	switch filepath.Clean(event.Name) {
	case w.dbFile, w.dbFile + "-wal", w.dbFile + "-journal":
		return true
	}
	return false
}

func (w *Watcher) trigger() {
	path := BackupPath(w.backupDir, w.now())
	w.log.Infow("taking automatic backup", "path", path)
	if err := w.backup(path); err != nil {
		w.log.Errorw("automatic backup failed", "path", path, "error", err)
	}
}

// BackupPath returns the automatic backup file for time t in dir.
func BackupPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(backupLayout)+".ini")
}
