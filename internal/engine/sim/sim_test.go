package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

const testTrack = "4uLU6hMCjMI75M1A2tKUQC"

type memStore struct {
	saved []engine.StoredCredentials
}

func (m *memStore) Save(creds engine.StoredCredentials) error {
	m.saved = append(m.saved, creds)
	return nil
}

func connect(t *testing.T, e *Engine, creds engine.Credentials) engine.Session {
	t.Helper()
	sess, err := e.Connect(context.Background(), engine.SessionConfig{DeviceID: "dev"}, creds, engine.ConnectOptions{})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return sess
}

func next(t *testing.T, events <-chan engine.Event) engine.Event {
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

func TestConnect(t *testing.T) {
	e := New(WithAccount("alice", "secret"))
	store := &memStore{}

	sess, err := e.Connect(context.Background(), engine.SessionConfig{}, engine.PasswordCredentials{User: "alice", Password: "secret"},
		engine.ConnectOptions{Store: store, StoreCredentials: true})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if sess.Username() != "alice" {
		t.Errorf("Username() = %q, want %q", sess.Username(), "alice")
	}
	if sess.ConnectionID() == "" {
		t.Error("ConnectionID() should not be empty")
	}
	if len(store.saved) != 1 || store.saved[0].User != "alice" {
		t.Fatalf("stored credentials = %+v, want one entry for alice", store.saved)
	}

	if _, err := e.Connect(context.Background(), engine.SessionConfig{}, store.saved[0], engine.ConnectOptions{}); err != nil {
		t.Errorf("Connect(stored) error = %v", err)
	}

	_, err = e.Connect(context.Background(), engine.SessionConfig{}, engine.PasswordCredentials{User: "alice", Password: "wrong"}, engine.ConnectOptions{})
	if !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Connect(wrong password) error = %v, want ErrBadCredentials", err)
	}

	_, err = e.Connect(context.Background(), engine.SessionConfig{}, engine.StoredCredentials{User: "alice", AuthData: []byte("forged")}, engine.ConnectOptions{})
	if !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Connect(forged blob) error = %v, want ErrBadCredentials", err)
	}

	if e.Connects() != 4 {
		t.Errorf("Connects() = %d, want 4", e.Connects())
	}
}

func TestSessionToken(t *testing.T) {
	e := New(WithAccount("alice", "secret"), WithTokenTTL(30*time.Minute))
	sess := connect(t, e, engine.PasswordCredentials{User: "alice", Password: "secret"})

	first, err := sess.Token(context.Background(), "client", "streaming")
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	second, _ := sess.Token(context.Background(), "client", "streaming")

	if first.AccessToken == second.AccessToken {
		t.Error("consecutive tokens should differ")
	}
	if first.ExpiresIn != 30*time.Minute {
		t.Errorf("ExpiresIn = %v, want %v", first.ExpiresIn, 30*time.Minute)
	}

	_ = sess.Close()
	if _, err := sess.Token(context.Background(), "client", "streaming"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Token() after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestNewPlayerRejectsUnknownBackend(t *testing.T) {
	e := New(WithAccount("alice", "secret"))
	sess := connect(t, e, engine.PasswordCredentials{User: "alice", Password: "secret"})

	if _, _, err := e.NewPlayer(engine.PlayerConfig{AudioBackend: "alsa"}, sess, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("NewPlayer(alsa) error = %v, want ErrUnknownBackend", err)
	}

	other := New(WithAccount("alice", "secret"))
	foreign := connect(t, other, engine.PasswordCredentials{User: "alice", Password: "secret"})
	if _, _, err := e.NewPlayer(engine.PlayerConfig{AudioBackend: "rodio"}, foreign, nil); !errors.Is(err, ErrForeignSession) {
		t.Errorf("NewPlayer(foreign) error = %v, want ErrForeignSession", err)
	}
}

func TestPlayerEvents(t *testing.T) {
	e := New(WithAccount("alice", "secret"), WithTrack(testTrack, 1000))
	sess := connect(t, e, engine.PasswordCredentials{User: "alice", Password: "secret"})

	player, events, err := e.NewPlayer(engine.PlayerConfig{AudioBackend: "rodio"}, sess, nil)
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	defer player.Close()

	id, _ := spotifyid.FromBase62(testTrack)
	req := player.Load(id.WithType(spotifyid.ItemTypeTrack), true, 0)
	player.Pause()
	player.Seek(5000)

	want := []engine.EventKind{
		engine.KindLoading,
		engine.KindTrackChanged,
		engine.KindPlaying,
		engine.KindPaused,
		engine.KindSeeked,
		engine.KindEndOfTrack,
	}
	for i, kind := range want {
		ev := next(t, events)
		if ev.Kind() != kind {
			t.Fatalf("event %d kind = %v, want %v", i, ev.Kind(), kind)
		}
		if s, ok := ev.(engine.Seeked); ok && s.PositionMs != 1000 {
			t.Errorf("Seeked.PositionMs = %d, want 1000 (clamped)", s.PositionMs)
		}
		if p, ok := ev.(engine.Playing); ok && p.PlayRequestID != req {
			t.Errorf("Playing.PlayRequestID = %d, want %d", p.PlayRequestID, req)
		}
	}
}

func TestPlayerUnavailableTrack(t *testing.T) {
	e := New(WithAccount("alice", "secret"), WithStrictCatalog())
	sess := connect(t, e, engine.PasswordCredentials{User: "alice", Password: "secret"})

	player, events, _ := e.NewPlayer(engine.PlayerConfig{AudioBackend: "rodio"}, sess, nil)
	defer player.Close()

	id, _ := spotifyid.FromBase62(testTrack)
	player.Load(id, true, 0)

	if ev := next(t, events); ev.Kind() != engine.KindUnavailable {
		t.Errorf("event kind = %v, want %v", ev.Kind(), engine.KindUnavailable)
	}
}

func TestPlayerCloseClosesChannel(t *testing.T) {
	e := New(WithAccount("alice", "secret"))
	sess := connect(t, e, engine.PasswordCredentials{User: "alice", Password: "secret"})

	player, events, _ := e.NewPlayer(engine.PlayerConfig{AudioBackend: "pipe"}, sess, nil)
	player.Close()
	player.Close()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after Close()")
	}

	if !e.Players()[0].Closed() {
		t.Error("Closed() = false, want true")
	}
}
