package sim

import (
	"sync"
	"sync/atomic"

	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

const commandBuffer = 64

// Player is a simulated playback engine. Commands run in order on a single
// goroutine which is the only writer of the event channel.
type Player struct {
	engine *Engine
	volume engine.VolumeSource

	cmds      chan func()
	events    chan engine.Event
	done      chan struct{}
	closeOnce sync.Once
	requestID atomic.Uint64

	// owned by run
	loaded     bool
	playing    bool
	requestNow uint64
	current    spotifyid.ID
	positionMs uint32
	durationMs uint32
}

func newPlayer(e *Engine, volume engine.VolumeSource) *Player {
	p := &Player{
		engine: e,
		volume: volume,
		cmds:   make(chan func(), commandBuffer),
		events: make(chan engine.Event),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Player) run() {
	defer close(p.events)
	for {
		select {
		case <-p.done:
			return
		case fn := <-p.cmds:
			fn()
		}
	}
}

func (p *Player) enqueue(fn func()) {
	select {
	case p.cmds <- fn:
	case <-p.done:
	}
}

func (p *Player) emit(ev engine.Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// Load queues a track.
func (p *Player) Load(id spotifyid.ID, startPlaying bool, positionMs uint32) uint64 {
	req := p.requestID.Add(1)
	p.enqueue(func() {
		durationMs, ok := p.engine.lookup(id)
		if !ok {
			p.emit(engine.Unavailable{PlayRequestID: req, TrackID: id})
			return
		}

		if p.loaded {
			p.emit(engine.Stopped{PlayRequestID: p.requestNow, TrackID: p.current})
		}

		p.loaded = true
		p.requestNow = req
		p.current = id
		p.durationMs = durationMs
		p.positionMs = min(positionMs, durationMs)

		p.emit(engine.Loading{PlayRequestID: req, TrackID: id, PositionMs: p.positionMs})
		p.emit(engine.TrackChanged{TrackID: id, DurationMs: durationMs})

		p.playing = startPlaying
		p.emitState()
	})
	return req
}

// Play resumes the loaded track.
func (p *Player) Play() {
	p.enqueue(func() {
		if !p.loaded {
			return
		}
		p.playing = true
		p.emitState()
	})
}

// Pause pauses the loaded track.
func (p *Player) Pause() {
	p.enqueue(func() {
		if !p.loaded {
			return
		}
		p.playing = false
		p.emitState()
	})
}

// Stop unloads the current track.
func (p *Player) Stop() {
	p.enqueue(func() {
		if !p.loaded {
			return
		}
		p.loaded = false
		p.playing = false
		p.emit(engine.Stopped{PlayRequestID: p.requestNow, TrackID: p.current})
	})
}

// Seek moves to an absolute position, clamped to the track length.
func (p *Player) Seek(positionMs uint32) {
	p.enqueue(func() {
		if !p.loaded {
			return
		}
		p.positionMs = min(positionMs, p.durationMs)
		p.emit(engine.Seeked{PlayRequestID: p.requestNow, TrackID: p.current, PositionMs: p.positionMs})
		if p.positionMs == p.durationMs {
			p.playing = false
			p.emit(engine.EndOfTrack{PlayRequestID: p.requestNow, TrackID: p.current})
		}
	})
}

// EmitVolumeChanged reports a mixer change.
func (p *Player) EmitVolumeChanged(volume uint16) {
	p.enqueue(func() {
		p.emit(engine.VolumeChanged{Volume: volume})
	})
}

// Inject queues an arbitrary event behind any pending commands.
func (p *Player) Inject(ev engine.Event) {
	p.enqueue(func() {
		p.emit(ev)
	})
}

// Attenuation returns the gain currently applied by the mixer.
func (p *Player) Attenuation() float64 {
	if p.volume == nil {
		return 1
	}
	return p.volume.Attenuation()
}

// Closed reports whether Close has been called.
func (p *Player) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Close stops the player and closes its event channel.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

func (p *Player) emitState() {
	if p.playing {
		p.emit(engine.Playing{
			PlayRequestID: p.requestNow,
			TrackID:       p.current,
			PositionMs:    p.positionMs,
			DurationMs:    p.durationMs,
		})
		return
	}
	p.emit(engine.Paused{
		PlayRequestID: p.requestNow,
		TrackID:       p.current,
		PositionMs:    p.positionMs,
		DurationMs:    p.durationMs,
	})
}

var _ engine.Player = (*Player)(nil)
