package speck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/tessro/speck/internal/credentials"
	"github.com/tessro/speck/internal/engine/sim"
	"github.com/tessro/speck/pkg/engine"
)

const testTrack = "4uLU6hMCjMI75M1A2tKUQC"

func newTestCore(t *testing.T, opts ...sim.Option) (*Core, *sim.Engine, *credentials.FileCache) {
	t.Helper()

	eng := sim.New(append([]sim.Option{sim.WithAccount("alice", "secret")}, opts...)...)
	cache := credentials.NewFileCache(afero.NewMemMapFs(), "/cache")

	cfg := DefaultConfig()
	cfg.Log.Level = "disabled"

	c, err := New(eng, WithConfig(cfg), WithCredentialCache(cache))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, eng, cache
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func login(t *testing.T, c *Core) {
	t.Helper()
	if res := c.Login(testContext(t), "alice", "secret"); !res.OK {
		t.Fatalf("Login() = %+v, want ok", res)
	}
}

func ready(t *testing.T, c *Core) {
	t.Helper()
	login(t, c)
	if err := c.InitPlayer(); err != nil {
		t.Fatalf("InitPlayer() error = %v", err)
	}
}

func TestNew(t *testing.T) {
	c, _, _ := newTestCore(t)
	if c.State() != Unauthenticated {
		t.Errorf("State() = %v, want %v", c.State(), Unauthenticated)
	}

	cfg := DefaultConfig()
	cfg.Cache.Backend = "s3"
	if _, err := New(sim.New(), WithConfig(cfg)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(bad config) error = %v, want ErrInvalidConfig", err)
	}
}

func TestLogin(t *testing.T) {
	c, _, cache := newTestCore(t)

	res := c.Login(testContext(t), "alice", "secret")
	if !res.OK || res.Message != "" {
		t.Fatalf("Login() = %+v, want ok with empty message", res)
	}
	if c.State() != Authenticated {
		t.Errorf("State() = %v, want %v", c.State(), Authenticated)
	}

	stored, err := cache.Load()
	if err != nil || !stored.IsPresent() {
		t.Errorf("credentials not cached after login: %v, %v", stored, err)
	}
}

func TestLoginBadPassword(t *testing.T) {
	c, _, _ := newTestCore(t)

	res := c.Login(testContext(t), "alice", "wrong")
	if res.OK {
		t.Fatal("Login() with wrong password should fail")
	}
	if res.Message == "" {
		t.Error("failed Login() should carry a message")
	}
	if c.State() != Unauthenticated {
		t.Errorf("State() = %v, want %v", c.State(), Unauthenticated)
	}
}

func TestFailedReloginKeepsSession(t *testing.T) {
	c, _, _ := newTestCore(t)
	login(t, c)
	_ = c.ForgetCredentials()

	if res := c.Login(testContext(t), "alice", "wrong"); res.OK {
		t.Fatal("Login() with wrong password should fail")
	}
	if c.State() != Authenticated {
		t.Errorf("State() = %v, want %v", c.State(), Authenticated)
	}
	if _, err := c.GetToken(testContext(t)); err != nil {
		t.Errorf("GetToken() after failed re-login error = %v", err)
	}
}

func TestCachedCredentialsWin(t *testing.T) {
	c, eng, cache := newTestCore(t)
	if err := cache.Save(engine.StoredCredentials{User: "alice", AuthData: sim.AuthData("alice")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if res := c.Login(testContext(t), "mallory", "not-a-password"); !res.OK {
		t.Fatalf("Login() = %+v, want ok via cached credentials", res)
	}
	sess, err := c.sessions.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if sess.Username() != "alice" {
		t.Errorf("Username() = %q, want %q", sess.Username(), "alice")
	}
	if eng.Connects() != 1 {
		t.Errorf("Connects() = %d, want 1", eng.Connects())
	}

	if err := c.ForgetCredentials(); err != nil {
		t.Fatalf("ForgetCredentials() error = %v", err)
	}
	if res := c.Login(testContext(t), "mallory", "not-a-password"); res.OK {
		t.Error("Login() after ForgetCredentials should use the supplied credentials")
	}
}

func TestGetToken(t *testing.T) {
	c, eng, _ := newTestCore(t, sim.WithTokenTTL(90*time.Minute))

	_, err := c.GetToken(testContext(t))
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("GetToken() before login error = %v, want ErrNotAuthenticated", err)
	}
	if ErrorKind(err) != "not_authenticated" {
		t.Errorf("ErrorKind() = %q, want %q", ErrorKind(err), "not_authenticated")
	}
	if eng.Connects() != 0 || eng.TokenRequests() != 0 {
		t.Errorf("engine contacted before login: connects=%d tokens=%d", eng.Connects(), eng.TokenRequests())
	}

	login(t, c)
	tok, err := c.GetToken(testContext(t))
	if err != nil {
		t.Fatalf("GetToken() error = %v", err)
	}
	if tok.AccessToken == "" {
		t.Error("AccessToken should not be empty")
	}
	if tok.ExpiresInSeconds != 5400 {
		t.Errorf("ExpiresInSeconds = %d, want 5400", tok.ExpiresInSeconds)
	}
}

func TestGuardsBeforeInit(t *testing.T) {
	c, eng, _ := newTestCore(t)

	if err := c.InitPlayer(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("InitPlayer() before login error = %v, want ErrNotAuthenticated", err)
	}
	if n := len(eng.Players()); n != 0 {
		t.Errorf("players after rejected InitPlayer() = %d, want 0", n)
	}

	login(t, c)

	commands := map[string]func() error{
		"play":       c.Play,
		"pause":      c.Pause,
		"stop":       c.Stop,
		"seek":       func() error { return c.Seek(1000) },
		"set_volume": func() error { return c.SetVolume(40) },
		"load_track": func() error { return c.LoadTrack(testTrack) },
	}
	for name, fn := range commands {
		if err := fn(); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s before InitPlayer error = %v, want ErrNotInitialized", name, err)
		}
	}

	if _, err := c.NextEvent(testContext(t)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("NextEvent() before InitPlayer error = %v, want ErrNotInitialized", err)
	}
}

func TestLoadAndPlay(t *testing.T) {
	c, _, _ := newTestCore(t, sim.WithTrack(testTrack, 200000))
	ready(t, c)

	if c.State() != PlayerReady {
		t.Errorf("State() = %v, want %v", c.State(), PlayerReady)
	}
	if err := c.LoadTrack(testTrack); err != nil {
		t.Fatalf("LoadTrack() error = %v", err)
	}
	if err := c.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	ctx := testContext(t)
	for {
		ev, err := c.NextEvent(ctx)
		if err != nil {
			t.Fatalf("NextEvent() error = %v", err)
		}
		if ev.Kind != EventPlaying {
			continue
		}
		if ev.TrackID != testTrack {
			t.Errorf("TrackID = %q, want %q", ev.TrackID, testTrack)
		}
		if ev.DurationMs != 200000 {
			t.Errorf("DurationMs = %d, want 200000", ev.DurationMs)
		}
		return
	}
}

func TestLoadTrackInvalidID(t *testing.T) {
	c, _, _ := newTestCore(t)
	ready(t, c)

	for _, id := range []string{"", "short", "4uLU6hMCjMI75M1A2tKUQ!", "spotify:local:song.mp3"} {
		if err := c.LoadTrack(id); !errors.Is(err, ErrInvalidTrackID) {
			t.Errorf("LoadTrack(%q) error = %v, want ErrInvalidTrackID", id, err)
		}
	}
}

func TestEventsInOrder(t *testing.T) {
	c, eng, _ := newTestCore(t)
	ready(t, c)

	p := eng.Players()[0]
	for v := uint16(1); v <= 5; v++ {
		p.Inject(engine.VolumeChanged{Volume: v})
	}

	ctx := testContext(t)
	for want := uint16(1); want <= 5; want++ {
		ev, err := c.NextEvent(ctx)
		if err != nil {
			t.Fatalf("NextEvent() error = %v", err)
		}
		if ev.Kind != EventVolumeChanged || ev.Volume != want {
			t.Errorf("event = %+v, want volume_changed %d", ev, want)
		}
	}
}

func TestCommandsWhileWaiting(t *testing.T) {
	c, _, _ := newTestCore(t, sim.WithTrack(testTrack, 1000))
	ready(t, c)

	var (
		wg  sync.WaitGroup
		got Event
		err error
	)
	ctx := testContext(t)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err = c.NextEvent(ctx)
	}()

	if lerr := c.LoadTrack(testTrack); lerr != nil {
		t.Fatalf("LoadTrack() while NextEvent pending error = %v", lerr)
	}
	if perr := c.Pause(); perr != nil {
		t.Fatalf("Pause() while NextEvent pending error = %v", perr)
	}

	wg.Wait()
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	if got.Kind != EventLoading {
		t.Errorf("Kind = %q, want %q", got.Kind, EventLoading)
	}
}

func TestReinitClosesPreviousStream(t *testing.T) {
	c, eng, _ := newTestCore(t)
	ready(t, c)

	c.mu.Lock()
	old := c.pump
	c.mu.Unlock()

	if err := c.InitPlayer(); err != nil {
		t.Fatalf("InitPlayer() again error = %v", err)
	}
	if _, err := old.Next(testContext(t)); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Next() on replaced stream error = %v, want ErrChannelClosed", err)
	}

	players := eng.Players()
	if len(players) != 2 || !players[0].Closed() {
		t.Errorf("previous player should be closed after re-init")
	}

	players[1].Inject(engine.SessionConnected{ConnectionID: "c1", UserName: "alice"})
	ev, err := c.NextEvent(testContext(t))
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	if ev.Kind != EventSessionConnected || ev.UserName != "alice" {
		t.Errorf("event = %+v", ev)
	}
}

func TestClose(t *testing.T) {
	c, eng, _ := newTestCore(t)
	ready(t, c)

	c.mu.Lock()
	pump := c.pump
	c.mu.Unlock()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.State() != Unauthenticated {
		t.Errorf("State() = %v, want %v", c.State(), Unauthenticated)
	}
	if _, err := pump.Next(testContext(t)); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Next() after Close error = %v, want ErrChannelClosed", err)
	}
	if !eng.Players()[0].Closed() {
		t.Error("player should be closed")
	}
	if err := c.Play(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Play() after Close error = %v, want ErrNotInitialized", err)
	}
}

func TestSetVolume(t *testing.T) {
	c, _, _ := newTestCore(t)
	ready(t, c)

	if err := c.SetVolume(100); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	ev, err := c.NextEvent(testContext(t))
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	if ev.Kind != EventVolumeChanged || ev.Volume != 65535 {
		t.Errorf("event = %+v, want volume_changed 65535", ev)
	}
}

func TestMutedInitialVolume(t *testing.T) {
	eng := sim.New(sim.WithAccount("alice", "secret"))
	cache := credentials.NewFileCache(afero.NewMemMapFs(), "/cache")

	muted := 0
	cfg := &Config{}
	cfg.Player.InitialVolume = &muted
	cfg.Log.Level = "disabled"

	c, err := New(eng, WithConfig(cfg), WithCredentialCache(cache))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if cfg.Cache.Dir != "" || cfg.Session.ClientID != "" {
		t.Errorf("New() modified the caller's config: %+v", cfg)
	}

	ready(t, c)
	if got := eng.Players()[0].Attenuation(); got != 0 {
		t.Errorf("Attenuation() = %v, want 0", got)
	}
}
