package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/multiview/internal/backend/memory"
	"github.com/genricoloni/multiview/internal/bus"
	"github.com/genricoloni/multiview/internal/controller"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/domain/mocks"
	"github.com/genricoloni/multiview/internal/layout"
	"github.com/genricoloni/multiview/internal/player"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type stubConfig struct{}

func (stubConfig) GetIdleTimeout() time.Duration { return time.Minute }
func (stubConfig) GetWheelStep() int              { return 12 }
func (stubConfig) GetDefaultSettings() domain.WindowSettings {
	return domain.DefaultWindowSettings()
}
func (stubConfig) GetSubscriptionToken() string { return "token" }

type fakeKeys struct {
	ch       chan domain.MediaKey
	startErr error
	stops    atomic.Int32
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{ch: make(chan domain.MediaKey, 8)}
}

func (k *fakeKeys) Start(context.Context) error      { return k.startErr }
func (k *fakeKeys) Stop() error                      { k.stops.Add(1); return nil }
func (k *fakeKeys) Events() <-chan domain.MediaKey { return k.ch }

type fixture struct {
	engine   *Engine
	backends *memory.Factory
	keys     *fakeKeys
	store    *layout.SQLiteStore
}

func newFixture(t *testing.T, resolve func(context.Context, string, domain.ContentRef) (string, error)) *fixture {
	t.Helper()
	if resolve == nil {
		resolve = func(_ context.Context, _ string, c domain.ContentRef) (string, error) {
			return "https://cdn.example.com/" + c.ID + ".m3u8", nil
		}
	}
	resolver := mocks.NewMockStreamResolver(gomock.NewController(t))
	resolver.EXPECT().ResolveStreamURL(gomock.Any(), "token", gomock.Any()).DoAndReturn(resolve).AnyTimes()

	store, err := layout.NewSQLiteStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := zap.NewNop()
	f := &fixture{
		backends: memory.NewFactory(logger),
		keys:     newFakeKeys(),
		store:    store,
	}
	f.engine = NewEngine(
		logger,
		stubConfig{},
		bus.New(logger),
		NewRegistry(logger),
		f.backends,
		resolver,
		store,
		layout.NewStaticScreen(layout.Rect{Width: 1920, Height: 1080}),
		f.keys,
	)
	t.Cleanup(func() { _ = f.engine.Stop(context.Background()) })
	return f
}

func (f *fixture) open(t *testing.T, content domain.ContentRef) *controller.Controller {
	t.Helper()
	c, err := f.engine.OpenSession(context.Background(), content, mo.None[domain.WindowSettings]())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st := c.Session().State()
		return st.AudioInitialized && st.IsPlaying
	}, 2*time.Second, 5*time.Millisecond)
	return c
}

func (f *fixture) backend(t *testing.T, id int64) *memory.Backend {
	t.Helper()
	b, ok := f.backends.Backend(id)
	require.True(t, ok, "no backend for session %d", id)
	return b
}

func live(id, name string) domain.ContentRef {
	return domain.ContentRef{ID: id, SyncUID: "race", Title: name, Name: name, Type: domain.ContentTypeLive}
}

func count(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}

func TestOpenSession_RegistersUntilClosed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.engine.Wait(ctx), "an engine without sessions is drained")

	a := f.open(t, live("main", "Main feed"))
	b := f.open(t, live("onboard", "Onboard"))

	assert.Equal(t, int64(1), a.ID())
	assert.Equal(t, "2. Onboard", b.Title())
	assert.Len(t, f.engine.Sessions(), 2)

	got, err := f.engine.Session(2)
	require.NoError(t, err)
	assert.Same(t, b, got)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.engine.Wait(waitCtx), context.DeadlineExceeded)

	assert.Equal(t, 2, f.engine.CloseAll(domain.ContentTypeAny))
	require.NoError(t, f.engine.Wait(ctx))
	assert.Empty(t, f.engine.Sessions())
	assert.Equal(t, 1, f.backend(t, 1).CloseCalls())
}

func TestOpenSession_InitializationFailureUnregisters(t *testing.T) {
	f := newFixture(t, func(context.Context, string, domain.ContentRef) (string, error) {
		return "", errors.New("token expired")
	})

	_, err := f.engine.OpenSession(context.Background(), live("main", "Main"), mo.None[domain.WindowSettings]())
	require.Error(t, err)
	assert.ErrorIs(t, err, player.ErrInitialization)

	var initErr *player.InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "resolve", initErr.Stage)

	assert.Empty(t, f.engine.Sessions())
	assert.NoError(t, f.engine.Wait(context.Background()))
}

func TestOpenSession_RestoresSavedSettings(t *testing.T) {
	f := newFixture(t, nil)

	saved := domain.DefaultWindowSettings()
	saved.Left, saved.Top = 100, 50
	saved.IsMuted = true
	saved.Volume = 40

	c, err := f.engine.OpenSession(context.Background(), live("main", "Main"), mo.Some(saved))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st := c.Session().State()
		return st.AudioInitialized && st.IsMuted && st.Volume == 40
	}, 2*time.Second, 5*time.Millisecond)

	s := c.Settings()
	assert.Equal(t, 100.0, s.Left)
	assert.Equal(t, 50.0, s.Top)
	assert.Equal(t, "Main", s.ChannelName)
}

func TestSessionCommands_UnknownSession(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.engine.MuteAllExcept(42)
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = f.engine.Sync(42)
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.ErrorIs(t, f.engine.ToggleFullScreen(42), ErrUnknownSession)
	_, err = f.engine.Session(42)
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestMuteAllExcept(t *testing.T) {
	f := newFixture(t, nil)
	a := f.open(t, live("main", "Main"))
	b := f.open(t, live("onboard", "Onboard"))

	n, err := f.engine.MuteAllExcept(b.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Eventually(t, func() bool {
		return a.Session().State().IsMuted && !b.Session().State().IsMuted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestToggleFullScreen_MutesOthers(t *testing.T) {
	f := newFixture(t, nil)
	a := f.open(t, live("main", "Main"))
	b := f.open(t, live("onboard", "Onboard"))

	require.NoError(t, f.engine.ToggleFullScreen(a.ID()))

	assert.Equal(t, domain.WindowMaximized, a.Settings().WindowState)
	assert.Equal(t, domain.WindowNormal, b.Settings().WindowState)
	require.Eventually(t, func() bool {
		return b.Session().State().IsMuted && !a.Session().State().IsMuted
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSync_AlignsSiblings(t *testing.T) {
	f := newFixture(t, nil)
	a := f.open(t, live("main", "Main"))
	f.open(t, live("onboard", "Onboard"))
	other := f.open(t, domain.ContentRef{ID: "replay", SyncUID: "other", Title: "Replay", Name: "Replay", Type: domain.ContentTypeEpisode})

	require.NoError(t, f.backend(t, a.ID()).Seek(90*time.Second))
	require.Eventually(t, func() bool {
		return a.Session().State().Time == 90*time.Second
	}, 2*time.Second, 5*time.Millisecond)

	n, err := f.engine.Sync(a.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 90*time.Second, f.backend(t, 2).Position())
	assert.Zero(t, f.backend(t, other.ID()).Position())
}

func TestMediaKeys(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background()))
	assert.ErrorIs(t, f.engine.Start(context.Background()), ErrAlreadyStarted)

	a := f.open(t, live("main", "Main"))
	f.open(t, live("onboard", "Onboard"))

	// The second press repeats the first and is dropped
	f.keys.ch <- domain.KeyPause
	f.keys.ch <- domain.KeyPause
	f.keys.ch <- domain.KeyNext
	f.keys.ch <- domain.KeyStop

	require.NoError(t, f.engine.Wait(context.Background()))
	assert.Empty(t, f.engine.Sessions())
	assert.Equal(t, 1, count(f.backend(t, a.ID()).Calls(), "pause"))
	assert.Equal(t, 1, count(f.backend(t, 2).Calls(), "pause"))

	require.NoError(t, f.engine.Stop(context.Background()))
	assert.Equal(t, int32(1), f.keys.stops.Load())
}

func TestStart_WithoutMediaKeys(t *testing.T) {
	f := newFixture(t, nil)
	f.keys.startErr = errors.New("no session bus")

	require.NoError(t, f.engine.Start(context.Background()))
	require.NoError(t, f.engine.Stop(context.Background()))
}

func TestSaveAndRestoreLayout(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	main := f.open(t, live("main", "Main"))
	onboard := f.open(t, live("onboard", "Onboard"))
	f.open(t, domain.ContentRef{ID: "replay", Title: "Replay", Name: "Replay", Type: domain.ContentTypeEpisode})

	main.SetBounds(layout.Rect{Left: 0, Top: 0, Width: 960, Height: 540})
	require.NoError(t, onboard.MoveToCorner(layout.BottomRight))

	n, err := f.engine.SaveLayout(ctx, domain.ContentTypeLive)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second save replaces the first
	n, err = f.engine.SaveLayout(ctx, domain.ContentTypeLive)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snapshots, err := f.store.Load(ctx, domain.ContentTypeLive)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	f.engine.CloseAll(domain.ContentTypeAny)
	require.NoError(t, f.engine.Wait(ctx))

	restored, err := f.engine.RestoreLayout(ctx, domain.ContentTypeLive, []domain.ContentRef{
		live("onboard", "Onboard"),
		live("main", "Main"),
	})
	require.NoError(t, err)
	require.Len(t, restored, 2)

	assert.Equal(t, "Main", restored[0].Content().Name)
	assert.Equal(t, layout.Rect{Left: 0, Top: 0, Width: 960, Height: 540}, layout.Bounds(restored[0].Settings()))

	s := restored[1].Settings()
	assert.Equal(t, "Onboard", restored[1].Content().Name)
	assert.Equal(t, layout.Rect{Left: 960, Top: 540, Width: 960, Height: 540}, layout.Bounds(s))
	assert.Equal(t, domain.ResizeNoResize, s.ResizeMode)
}

type failingStore struct {
	*layout.SQLiteStore
	err error
}

func (s failingStore) Replace(context.Context, domain.ContentType, []domain.LayoutSnapshot) error {
	return s.err
}

func TestSaveLayout_FailedWriteKeepsPreviousLayout(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.open(t, live("main", "Main"))
	f.open(t, live("onboard", "Onboard"))
	n, err := f.engine.SaveLayout(ctx, domain.ContentTypeLive)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	f.engine.layouts = failingStore{SQLiteStore: f.store, err: errors.New("disk full")}
	n, err = f.engine.SaveLayout(ctx, domain.ContentTypeLive)
	require.Error(t, err)
	assert.Zero(t, n)

	snapshots, err := f.store.Load(ctx, domain.ContentTypeLive)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestRestoreLayout_SkipsUnknownChannels(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	saved := domain.DefaultWindowSettings()
	saved.ChannelName = "Gone"
	require.NoError(t, f.store.Append(ctx, domain.LayoutSnapshot{ContentType: domain.ContentTypeLive, Settings: saved}))

	restored, err := f.engine.RestoreLayout(ctx, domain.ContentTypeLive, []domain.ContentRef{live("main", "Main")})
	require.NoError(t, err)
	assert.Empty(t, restored)
	assert.Empty(t, f.engine.Sessions())
}

func TestStop_ClosesSessionsAndRejectsNewOnes(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background()))
	f.open(t, live("main", "Main"))
	f.open(t, live("onboard", "Onboard"))

	require.NoError(t, f.engine.Stop(context.Background()))
	assert.Empty(t, f.engine.Sessions())
	assert.Equal(t, 1, f.backend(t, 1).CloseCalls())
	assert.Equal(t, 1, f.backend(t, 2).CloseCalls())

	_, err := f.engine.OpenSession(context.Background(), live("late", "Late"), mo.None[domain.WindowSettings]())
	assert.ErrorIs(t, err, ErrStopped)
}
