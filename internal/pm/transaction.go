// Package pm drives package-manager transactions.
//
// A Transaction performs exactly one operation (refresh, resolve or install)
// and reports its progress as a stream of events that ends with a single
// Finished event, after which the channel is closed. Callers obtain a fresh
// Transaction from a Transactor for every step.
package pm

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrTransactionUsed is returned when a transaction is asked to run a second
// operation.
var ErrTransactionUsed = errors.New("transaction already used")

// EventKind is the type of a transaction event.
type EventKind int

const (
	PackageFound EventKind = iota
	Finished
)

// Info classifies a found package.
type Info uint32

const (
	InfoUnknown Info = iota
	InfoInstalled
	InfoAvailable
)

// Exit is the outcome carried by a Finished event.
type Exit int

const (
	ExitSuccess Exit = iota
	ExitFailed
	ExitCancelled
)

func (e Exit) String() string {
	switch e {
	case ExitSuccess:
		return "success"
	case ExitFailed:
		return "failed"
	case ExitCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is one notification from a running transaction.
type Event struct {
	Kind      EventKind
	Info      Info
	PackageID string
	Summary   string
	Exit      Exit
	Err       error
}

// Transaction is a single package-manager operation. Each method may be
// called once per Transaction; the returned channel delivers PackageFound
// events (resolve only) followed by one Finished event and is then closed.
type Transaction interface {
	RefreshCache(ctx context.Context) (<-chan Event, error)
	Resolve(ctx context.Context, names []string) (<-chan Event, error)
	InstallPackages(ctx context.Context, ids []string) (<-chan Event, error)
}

// Transactor creates transactions.
type Transactor interface {
	NewTransaction() Transaction
}

// Wait drains events until the transaction finishes, calling onFound for
// every PackageFound event. It returns the Finished event. A channel closed
// without a Finished event is reported as cancelled.
func Wait(events <-chan Event, onFound func(Event)) Event {
	for ev := range events {
		switch ev.Kind {
		case PackageFound:
			if onFound != nil {
				onFound(ev)
			}
		case Finished:
			// Drain anything left so the sender is never stuck.
			for range events {
			}
			return ev
		}
	}
	return Event{Kind: Finished, Exit: ExitCancelled, Err: context.Canceled}
}

// once guards a transaction against being run twice.
type once struct {
	used atomic.Bool
}

func (o *once) begin() error {
	if !o.used.CompareAndSwap(false, true) {
		return ErrTransactionUsed
	}
	return nil
}

// emitter sends events on a buffered channel, giving up when ctx is done.
type emitter struct {
	ctx context.Context
	ch  chan Event
}

func newEmitter(ctx context.Context) *emitter {
	return &emitter{ctx: ctx, ch: make(chan Event, 16)}
}

func (e *emitter) found(info Info, id, summary string) bool {
	select {
	case e.ch <- Event{Kind: PackageFound, Info: info, PackageID: id, Summary: summary}:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// finish sends the terminal event and closes the channel.
func (e *emitter) finish(err error) {
	defer close(e.ch)

	ev := Event{Kind: Finished, Exit: ExitSuccess}
	switch {
	case e.ctx.Err() != nil:
		ev.Exit = ExitCancelled
		ev.Err = e.ctx.Err()
	case err != nil:
		ev.Exit = ExitFailed
		ev.Err = err
	}

	select {
	case e.ch <- ev:
	case <-e.ctx.Done():
	}
}
