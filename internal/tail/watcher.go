// Package tail follows a player's event stream and renders it for a terminal.
package tail

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/internal/events"
)

// Source yields player events one at a time.
type Source interface {
	NextEvent(ctx context.Context) (events.BridgeEvent, error)
}

// Entry is an event stamped with the time it was received.
type Entry struct {
	Event    events.BridgeEvent
	Received time.Time
}

// StopFunc decides whether an event ends the watch.
type StopFunc func(events.BridgeEvent) bool

// Watcher pulls events from a Source onto a channel.
type Watcher struct {
	source Source
	stop   StopFunc
	now    func() time.Time
	events chan Entry
}

// NewWatcher creates a watcher over source. A nil stop never ends the watch.
func NewWatcher(source Source, stop StopFunc) *Watcher {
	if stop == nil {
		stop = func(events.BridgeEvent) bool { return false }
	}
	return &Watcher{
		source: source,
		stop:   stop,
		now:    time.Now,
		events: make(chan Entry, 16),
	}
}

// Events returns the channel of received events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan Entry {
	return w.events
}

// Start forwards events until ctx is done, the source closes, or stop
// matches. The matching event is delivered before the channel closes.
func (w *Watcher) Start(ctx context.Context) error {
	defer close(w.events)

	for {
		ev, err := w.source.NextEvent(ctx)
		if err != nil {
			if errors.Is(err, speckerrors.ErrChannelClosed) {
				return nil
			}
			return err
		}

		select {
		case w.events <- Entry{Event: ev, Received: w.now()}:
		case <-ctx.Done():
			return ctx.Err()
		}

		if w.stop(ev) {
			return nil
		}
	}
}

// StopOn returns a StopFunc matching any of kinds.
func StopOn(kinds ...events.Kind) StopFunc {
	return func(ev events.BridgeEvent) bool {
		return lo.Contains(kinds, ev.Kind)
	}
}
