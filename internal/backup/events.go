package backup

import "fmt"

// EventKind identifies an engine notification.
type EventKind int

const (
	// StatusChanged fires whenever Status changes value.
	StatusChanged EventKind = iota
	// BackedUp fires when a backup file has been written.
	BackedUp
	// Restored fires once at the end of every accepted restore.
	Restored
	// BackupFailed fires when a backup is abandoned. Code tells why.
	BackupFailed
	// RestoreFailed fires when the backup file could not be read. The
	// restore still ends with Restored.
	RestoreFailed
)

func (k EventKind) String() string {
	switch k {
	case StatusChanged:
		return "status changed"
	case BackedUp:
		return "backed up"
	case Restored:
		return "restored"
	case BackupFailed:
		return "backup failed"
	case RestoreFailed:
		return "restore failed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// ErrorCode classifies a BackupFailed event.
type ErrorCode int

const (
	NoError ErrorCode = iota
	// DirectoryError means the target directory could not be created.
	DirectoryError
	// SourceError means current state could not be read.
	SourceError
	// WriteError means the backup file could not be written.
	WriteError
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "no error"
	case DirectoryError:
		return "directory error"
	case SourceError:
		return "source error"
	case WriteError:
		return "write error"
	default:
		return fmt.Sprintf("error(%d)", int(c))
	}
}

// Event is delivered to listeners.
type Event struct {
	Kind   EventKind
	Status Status // new status, for StatusChanged
	Path   string
	Code   ErrorCode
	Err    error
}

// Listener receives engine events. Listeners are called synchronously from
// the goroutine doing the work and must not block for long.
type Listener func(Event)
