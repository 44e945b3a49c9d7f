package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/pkg/engine"
)

// Pump drains an engine event channel into an unbounded FIFO queue and
// hands events out one at a time. It never blocks the engine.
type Pump struct {
	logger zerolog.Logger
	stop   chan struct{}

	mu       sync.Mutex
	queue    []engine.Event
	closed   bool
	changed  chan struct{}
	stopOnce sync.Once
}

// NewPump starts draining src. The pump closes once src is closed or
// Close is called.
func NewPump(src <-chan engine.Event, logger zerolog.Logger) *Pump {
	p := &Pump{
		logger:  logger,
		stop:    make(chan struct{}),
		changed: make(chan struct{}),
	}
	go p.forward(src)
	return p
}

func (p *Pump) forward(src <-chan engine.Event) {
	defer p.finish()
	for {
		select {
		case <-p.stop:
			return
		case ev, ok := <-src:
			if !ok {
				p.logger.Debug().Msg("Engine event channel closed")
				return
			}
			p.push(ev)
		}
	}
}

func (p *Pump) push(ev engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, ev)
	p.notifyLocked()
}

func (p *Pump) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.notifyLocked()
}

// notifyLocked wakes every waiter. Must hold p.mu.
func (p *Pump) notifyLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// Next waits for the next event and returns its bridge form. Events
// queued before the source closed are still delivered; after that Next
// fails with ErrChannelClosed.
func (p *Pump) Next(ctx context.Context) (BridgeEvent, error) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			ev := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			p.mu.Unlock()

			out, err := Translate(ev)
			if err != nil {
				p.logger.Error().Err(err).Str("event", ev.Kind().String()).Msg("Failed to translate event")
				return BridgeEvent{}, err
			}
			p.logger.Debug().Str("kind", string(out.Kind)).Uint64("play_request_id", out.PlayRequestID).Msg("Event delivered")
			return out, nil
		}
		if p.closed {
			p.mu.Unlock()
			return BridgeEvent{}, speckerrors.ErrChannelClosed
		}
		wait := p.changed
		p.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return BridgeEvent{}, ctx.Err()
		}
	}
}

// Len returns the number of queued events.
func (p *Pump) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close drops the pump: queued events are discarded and pending Next
// calls fail with ErrChannelClosed.
func (p *Pump) Close() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	if !p.closed {
		p.closed = true
		p.notifyLocked()
	}
}
