// Package watcher takes automatic backups when the state database changes.
//
// The Watcher subscribes to filesystem events for the directory holding the
// database (watching the directory rather than the file also catches SQLite's
// -wal and -journal companions). Bursts of writes are coalesced: a backup is
// taken once no change has been seen for the debounce interval. Each backup
// goes to a new timestamped file in the backup directory.
//
// Example usage:
//
//	w, err := watcher.New(dbPath, backupDir, func(path string) error {
//		return engine.Backup(path, backup.AllItems)
//	}, watcher.WithDebounce(5*time.Second))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
// The package also manages a detached daemon process with a PID file, for
// running the watcher in the background.
package watcher
