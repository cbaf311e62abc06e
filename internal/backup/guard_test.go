package backup

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe routes the engine's log at level and above into memory.
func observe(env *testEnv, level zapcore.Level) *observer.ObservedLogs {
	core, logs := observer.New(level)
	env.engine.log = zap.New(core).Sugar()
	return logs
}

func TestIdleListenerCanStartNextOperation(t *testing.T) {
	env := newTestEnv(t)
	next := filepath.Join(t.TempDir(), "next.ini")

	var once sync.Once
	accepted := make(chan error, 1)
	env.engine.Subscribe(func(ev Event) {
		if ev.Kind == StatusChanged && ev.Status == Idle {
			once.Do(func() { accepted <- env.engine.Backup(next, AllItems) })
		}
	})

	path := writeSnapshot(t, snapshotContent{bookmarks: []uint32{42}})
	if err := env.engine.Restore(path); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	select {
	case err := <-accepted:
		if err != nil {
			t.Fatalf("Backup() from Idle listener = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for Idle")
	}

	// The restore's final event and the backup may arrive in either order.
	seen := map[EventKind]bool{}
	timeout := time.After(5 * time.Second)
	for !seen[Restored] || !seen[BackedUp] {
		select {
		case ev := <-env.events:
			seen[ev.Kind] = true
			if ev.Kind == BackupFailed {
				t.Fatalf("Backup failed: %+v", ev)
			}
		case <-timeout:
			t.Fatalf("Timed out, saw %v", seen)
		}
	}
}

func TestFinishReleasesGuardBeforeNotifying(t *testing.T) {
	env := newTestEnv(t)

	free := make(chan bool, 2)
	env.engine.Subscribe(func(ev Event) {
		if ev.Kind == BackedUp || (ev.Kind == StatusChanged && ev.Status == Idle) {
			env.engine.mu.Lock()
			free <- env.engine.running == ""
			env.engine.mu.Unlock()
		}
	})

	if err := env.engine.Backup(filepath.Join(t.TempDir(), "b.ini"), Bookmarks); err != nil {
		t.Fatalf("Backup() failed: %v", err)
	}
	env.waitFor(t, BackedUp)

	for i := 0; i < 2; i++ {
		if !<-free {
			t.Error("Guard still held while listeners were notified")
		}
	}
}

func TestBusyWarningNamesRunningOperation(t *testing.T) {
	env := newTestEnv(t)
	logs := observe(env, zapcore.WarnLevel)
	env.pm.gate = make(chan struct{})

	path := writeSnapshot(t, snapshotContent{installed: []string{"harbour-app"}})
	if err := env.engine.Restore(path); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	// Reject straight away, before the restore goroutine has set any status.
	err := env.engine.Backup(filepath.Join(t.TempDir(), "b.ini"), AllItems)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("Backup() error = %v, want ErrBusy", err)
	}

	entries := logs.FilterMessage("rejecting overlapping operation").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one rejection warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["operation"] != "backup" || fields["running"] != "restore" {
		t.Errorf("warning fields = %v, want operation=backup running=restore", fields)
	}

	close(env.pm.gate)
	env.waitFor(t, Restored)
}

func TestUnparsableCandidateVersionIsLogged(t *testing.T) {
	env := newTestEnv(t)
	logs := observe(env, zapcore.WarnLevel)
	env.pm.resolve["harbour-app"] = []string{"harbour-app;...;noarch;openrepos-alice"}

	path := writeSnapshot(t, snapshotContent{installed: []string{"harbour-app"}})
	if err := env.engine.Restore(path); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	env.waitFor(t, Restored)

	if n := logs.FilterMessage("candidate has an unparsable version and ranks lowest").Len(); n != 1 {
		t.Errorf("Expected one unparsable version warning, got %d", n)
	}

	// It is still the only candidate, so it is installed.
	_, _, _, installs := env.pm.snapshot()
	if len(installs) != 1 || len(installs[0]) != 1 {
		t.Errorf("installs = %v, want the single candidate", installs)
	}
}
