package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tessro/speck/internal/config"
	"github.com/tessro/speck/internal/engine/sim"
	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/internal/session"
	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

const testTrack = "4uLU6hMCjMI75M1A2tKUQC"

func setup(t *testing.T, login bool) (*Controller, *sim.Engine) {
	t.Helper()
	e := sim.New(sim.WithAccount("alice", "secret"))
	sessions := session.NewManager(e, config.Default().Session, nil, false, zerolog.Nop())
	if login {
		if _, err := sessions.Connect(context.Background(), engine.PasswordCredentials{User: "alice", Password: "secret"}); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}
	c := NewController(e, sessions, config.Default().Player, zerolog.Nop())
	t.Cleanup(c.Close)
	return c, e
}

func recv(t *testing.T, events <-chan engine.Event) engine.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestInitializeRequiresSession(t *testing.T) {
	c, e := setup(t, false)

	_, err := c.Initialize()
	if !errors.Is(err, speckerrors.ErrNotAuthenticated) {
		t.Errorf("Initialize() error = %v, want ErrNotAuthenticated", err)
	}
	if len(e.Players()) != 0 {
		t.Error("Initialize() without session constructed a player")
	}
	if c.IsInitialized() {
		t.Error("IsInitialized() = true, want false")
	}
}

func TestCommandsRequirePlayer(t *testing.T) {
	c, _ := setup(t, true)

	commands := map[string]func() error{
		"play":   c.Play,
		"pause":  c.Pause,
		"stop":   c.Stop,
		"seek":   func() error { return c.Seek(1000) },
		"volume": func() error { return c.SetVolume(10) },
		"load": func() error {
			_, err := c.Load(testTrack)
			return err
		},
	}

	for name, cmd := range commands {
		if err := cmd(); !errors.Is(err, speckerrors.ErrNotInitialized) {
			t.Errorf("%s error = %v, want ErrNotInitialized", name, err)
		}
	}
}

func TestLoadNormalisesToTrack(t *testing.T) {
	c, _ := setup(t, true)
	events, err := c.Initialize()
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	for _, input := range []string{testTrack, "spotify:episode:" + testTrack} {
		req, err := c.Load(input)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", input, err)
		}

		var loading engine.Loading
		for {
			ev := recv(t, events)
			if l, ok := ev.(engine.Loading); ok {
				loading = l
				break
			}
		}

		if loading.PlayRequestID != req {
			t.Errorf("PlayRequestID = %d, want %d", loading.PlayRequestID, req)
		}
		if loading.TrackID.Type() != spotifyid.ItemTypeTrack {
			t.Errorf("Type() = %q, want %q", loading.TrackID.Type(), spotifyid.ItemTypeTrack)
		}
		if loading.PositionMs != 0 {
			t.Errorf("PositionMs = %d, want 0", loading.PositionMs)
		}
		if b62, _ := loading.TrackID.ToBase62(); b62 != testTrack {
			t.Errorf("ToBase62() = %q, want %q", b62, testTrack)
		}
	}
}

func TestLoadInvalidTrack(t *testing.T) {
	c, _ := setup(t, true)
	if _, err := c.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if _, err := c.Load("not-a-track"); !errors.Is(err, speckerrors.ErrInvalidTrackID) {
		t.Errorf("Load() error = %v, want ErrInvalidTrackID", err)
	}
}

func TestInitializeReplacesPlayer(t *testing.T) {
	c, e := setup(t, true)

	first, err := c.Initialize()
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, err := c.Initialize(); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}

	select {
	case _, ok := <-first:
		if ok {
			t.Error("old channel delivered an event, want closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("old channel was not closed on replacement")
	}

	players := e.Players()
	if len(players) != 2 || !players[0].Closed() || players[1].Closed() {
		t.Error("expected first player closed and second live")
	}
}

func TestSetVolume(t *testing.T) {
	c, e := setup(t, true)
	events, err := c.Initialize()
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := c.SetVolume(25); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	ev, ok := recv(t, events).(engine.VolumeChanged)
	if !ok {
		t.Fatal("expected VolumeChanged event")
	}
	if ev.Volume != PercentToVolume(25) {
		t.Errorf("Volume = %d, want %d", ev.Volume, PercentToVolume(25))
	}
	if c.Volume() != 25 {
		t.Errorf("Volume() = %d, want 25", c.Volume())
	}
	if got := e.Players()[0].Attenuation(); got < 0.24 || got > 0.26 {
		t.Errorf("Attenuation() = %v, want ~0.25", got)
	}
}

func TestInitializeUnknownBackend(t *testing.T) {
	e := sim.New(sim.WithAccount("alice", "secret"))
	sessions := session.NewManager(e, config.Default().Session, nil, false, zerolog.Nop())
	_, _ = sessions.Connect(context.Background(), engine.PasswordCredentials{User: "alice", Password: "secret"})

	c := NewController(e, sessions, config.PlayerConfig{AudioBackend: "alsa"}, zerolog.Nop())
	if _, err := c.Initialize(); !errors.Is(err, sim.ErrUnknownBackend) {
		t.Errorf("Initialize() error = %v, want ErrUnknownBackend", err)
	}
	if c.IsInitialized() {
		t.Error("failed Initialize() left a player behind")
	}
}
