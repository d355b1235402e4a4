package host

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"
	"openplay-app/internal/store"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var start = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

type fakeSyncer struct {
	mu        sync.Mutex
	err       error
	summaries []model.Summary
}

func (f *fakeSyncer) Sync(_ context.Context, summary model.Summary) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.summaries = append(f.summaries, summary)
	return "https://cdn.example.com/" + summary.SessionID, nil
}

func (f *fakeSyncer) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSyncer) uploaded() []model.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Summary(nil), f.summaries...)
}

type recorder struct {
	mu        sync.Mutex
	events    []Announcement
	snapshots int
}

func (r *recorder) Announce(_ context.Context, a Announcement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, a)
}

func (r *recorder) SnapshotChanged(model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots++
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := []EventKind{}
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fixture struct {
	t      *testing.T
	host   *Host
	store  *store.MemoryStore
	clock  *clockwork.FakeClock
	events *recorder
	syncer *fakeSyncer
}

func newFixture(t *testing.T, syncer *fakeSyncer) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		store:  store.NewMemoryStore(),
		clock:  clockwork.NewFakeClockAt(start),
		events: &recorder{},
		syncer: syncer,
	}
	opts := Options{
		Store:      f.store,
		Clock:      f.clock,
		Rand:       rand.New(rand.NewSource(1)),
		Logger:     zap.NewNop(),
		Announcers: []Announcer{f.events},
		Listeners:  []Listener{f.events},
	}
	if syncer != nil {
		opts.Syncer = syncer
	}
	h, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	f.host = h
	return f
}

func (f *fixture) must(cmd session.Command) model.Snapshot {
	f.t.Helper()
	snapshot, ok := f.host.Dispatch(cmd)
	require.True(f.t, ok, "command %s was not applied", cmd.Kind())
	return snapshot
}

func (f *fixture) playerID(name string) string {
	f.t.Helper()
	for _, p := range f.host.Snapshot().Session.Players {
		if p.Name == name {
			return p.ID
		}
	}
	f.t.Fatalf("player %q not found", name)
	return ""
}

func (f *fixture) startSession(courts int, names ...string) {
	f.t.Helper()
	f.must(session.SetCourts{Courts: courts})
	f.must(session.SetLocation{Location: "Riverside Park"})
	for _, name := range names {
		f.must(session.AddPlayer{Name: name})
		f.must(session.CheckInPlayer{PlayerID: f.playerID(name)})
	}
	f.must(session.StartSession{})
}

func (f *fixture) activeMatch(i int) model.Match {
	f.t.Helper()
	active := f.host.Snapshot().Session.ActiveMatches
	require.Greater(f.t, len(active), i)
	return active[i]
}

func TestNewStartsFreshSession(t *testing.T) {
	f := newFixture(t, nil)

	snapshot := f.host.Snapshot()
	assert.NotEmpty(t, snapshot.Session.ID)
	assert.Equal(t, session.PhaseSetup, session.PhaseOf(snapshot.Session))

	stored, ok := f.store.LoadSession()
	require.True(t, ok)
	assert.Equal(t, snapshot.Session.ID, stored.Session.ID)
}

func TestNewRestoresStoredSession(t *testing.T) {
	st := store.NewMemoryStore()
	saved := model.Snapshot{Session: session.New("restored")}
	saved.Session.Location = "Riverside Park"
	require.NoError(t, st.SaveSession(saved))

	h, err := New(Options{Store: st, Clock: clockwork.NewFakeClockAt(start)})
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "restored", h.Snapshot().Session.ID)
	assert.Equal(t, "Riverside Park", h.Snapshot().Session.Location)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestDispatchPersistsAppliedCommands(t *testing.T) {
	f := newFixture(t, nil)

	f.must(session.AddPlayer{Name: "Alice"})
	f.host.Flush()

	stored, ok := f.store.LoadSession()
	require.True(t, ok)
	require.Len(t, stored.Session.Players, 1)
	assert.Equal(t, "Alice", stored.Session.Players[0].Name)
	assert.Equal(t, 1, f.events.snapshots)
}

func TestDispatchIgnoredCommandHasNoEffects(t *testing.T) {
	f := newFixture(t, nil)

	_, ok := f.host.Dispatch(session.StartSession{})
	assert.False(t, ok)
	f.host.Flush()
	assert.Zero(t, f.events.snapshots)
}

func TestStartSessionRecordsLocation(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(1, "a", "b", "c", "d")
	f.host.Flush()

	locations := f.store.ListLocations()
	require.Len(t, locations, 1)
	assert.Equal(t, "Riverside Park", locations[0].Name)
	assert.Equal(t, 1, locations[0].Courts)
}

func TestAnnouncements(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(1, "a", "b", "c", "d")

	match := f.activeMatch(0)
	f.must(session.RecordWinner{MatchID: match.ID, Winner: 1})
	f.host.Flush()

	assert.Equal(t, []EventKind{EventMatchFormed, EventWinnerRecorded}, f.events.kinds())
	assert.Contains(t, f.events.events[0].Text, "Court 1")
	assert.Contains(t, f.events.events[1].Text, "won")
}

func TestUndoDoesNotAnnounceTheRestoredMatch(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(1, "a", "b", "c", "d")

	match := f.activeMatch(0)
	f.must(session.RecordWinner{MatchID: match.ID, Winner: 1})
	f.must(session.UndoWinner{MatchID: match.ID})
	f.host.Flush()

	assert.Equal(t, []EventKind{EventMatchFormed, EventWinnerRecorded}, f.events.kinds())
}

func TestMutedSkipsAnnouncements(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.store.SetMuted(true))

	f.startSession(1, "a", "b", "c", "d")
	f.host.Flush()

	assert.Empty(t, f.events.kinds())
	assert.Positive(t, f.events.snapshots)
}

func TestUndoExpires(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(1, "a", "b", "c", "d")

	match := f.activeMatch(0)
	snapshot := f.must(session.RecordWinner{MatchID: match.ID, Winner: 2})
	require.NotNil(t, snapshot.Undo)

	f.clock.Advance(DefaultUndoExpiry - time.Second)
	assert.NotNil(t, f.host.Snapshot().Undo)

	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return f.host.Snapshot().Undo == nil }, time.Second, 5*time.Millisecond)

	_, ok := f.host.Dispatch(session.UndoWinner{MatchID: match.ID})
	assert.False(t, ok)
}

func TestNewUndoReplacesExpiryTimer(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(2, "a", "b", "c", "d", "e", "f", "g", "h")

	first := f.activeMatch(0)
	second := f.activeMatch(1)
	f.must(session.RecordWinner{MatchID: first.ID, Winner: 1})

	f.clock.Advance(6 * time.Second)
	f.must(session.RecordWinner{MatchID: second.ID, Winner: 1})

	f.clock.Advance(6 * time.Second)
	undo := f.host.Snapshot().Undo
	require.NotNil(t, undo)
	assert.Equal(t, second.ID, undo.MatchID)

	f.clock.Advance(4 * time.Second)
	require.Eventually(t, func() bool { return f.host.Snapshot().Undo == nil }, time.Second, 5*time.Millisecond)
}

func TestRestoredUndoPastExpiryIsCleared(t *testing.T) {
	st := store.NewMemoryStore()
	saved := model.Snapshot{
		Session: session.New("restored"),
		Undo:    &model.UndoAction{Kind: model.UndoWinner, MatchID: "m1", Court: 1, Timestamp: start.Add(-time.Minute)},
	}
	require.NoError(t, st.SaveSession(saved))

	h, err := New(Options{Store: st, Clock: clockwork.NewFakeClockAt(start)})
	require.NoError(t, err)
	defer h.Close()

	assert.Nil(t, h.Snapshot().Undo)
}

func TestEndSessionFlushesDirectoryAndSyncs(t *testing.T) {
	syncer := &fakeSyncer{}
	f := newFixture(t, syncer)
	f.startSession(1, "a", "b", "c", "d", "e")

	match := f.activeMatch(0)
	f.must(session.RecordWinner{MatchID: match.ID, Winner: 1})
	f.must(session.EndSession{})
	f.host.Flush()

	for _, id := range match.Team1 {
		p, _ := session.FindPlayer(f.host.Snapshot().Session, id)
		record, ok := f.store.GetPlayerRecord(p.Name)
		require.True(t, ok)
		assert.Equal(t, 1, record.LifetimeWins)
		assert.Equal(t, 1, record.LifetimeGames)
	}
	assert.Len(t, f.store.ListPlayerRecords(), 4)

	uploaded := syncer.uploaded()
	require.Len(t, uploaded, 1)
	assert.Equal(t, "Riverside Park", uploaded[0].Location)
	assert.Equal(t, 1, uploaded[0].Matches)
	assert.Len(t, uploaded[0].Standings, 4)
	assert.Empty(t, f.store.ListPendingSyncs())
}

func TestFailedSyncIsQueuedAndRetried(t *testing.T) {
	syncer := &fakeSyncer{}
	syncer.setErr(errors.New("offline"))
	f := newFixture(t, syncer)
	f.startSession(1, "a", "b", "c", "d")

	f.must(session.RecordWinner{MatchID: f.activeMatch(0).ID, Winner: 1})
	f.must(session.EndSession{})
	f.host.Flush()

	pending := f.store.ListPendingSyncs()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "offline", pending[0].LastError)

	synced, err := f.host.RetryPendingSyncs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Equal(t, 2, f.store.ListPendingSyncs()[0].Attempts)

	syncer.setErr(nil)
	synced, err = f.host.RetryPendingSyncs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Empty(t, f.store.ListPendingSyncs())
	assert.Len(t, syncer.uploaded(), 1)
}

func TestNewSessionClearsUndo(t *testing.T) {
	f := newFixture(t, nil)
	f.startSession(1, "a", "b", "c", "d")
	f.must(session.RecordWinner{MatchID: f.activeMatch(0).ID, Winner: 1})
	before := f.host.Snapshot().Session.ID

	snapshot := f.must(session.NewSession{})
	assert.Nil(t, snapshot.Undo)
	assert.NotEqual(t, before, snapshot.Session.ID)
	assert.Equal(t, "Riverside Park", snapshot.Session.Location)
}

func TestClose(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.host.Close())
	assert.ErrorIs(t, f.host.Close(), ErrClosed)

	_, ok := f.host.Dispatch(session.AddPlayer{Name: "late"})
	assert.False(t, ok)
}

func TestBuildSummary(t *testing.T) {
	s := session.New("s1")
	s.Location = "Riverside Park"
	s.Players = []model.Player{
		{ID: "a", Name: "Alice", Wins: 2, Losses: 1, GamesPlayed: 3},
		{ID: "b", Name: "Bob"},
	}
	summary := BuildSummary(s)
	assert.Equal(t, "s1", summary.SessionID)
	require.Len(t, summary.Standings, 1)
	assert.Equal(t, "Alice", summary.Standings[0].Name)
	assert.Len(t, summary.Players, 2)
}

func newReloadingHost(t *testing.T, st store.Store, clock clockwork.Clock) *Host {
	t.Helper()
	h, err := New(Options{
		Store:              st,
		Clock:              clock,
		Rand:               rand.New(rand.NewSource(1)),
		Logger:             zap.NewNop(),
		ReloadEachDispatch: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestDispatchThenFlushLeavesSnapshotInStore(t *testing.T) {
	st := store.NewMemoryStore()
	h := newReloadingHost(t, st, clockwork.NewFakeClockAt(start))

	snapshot, ok := h.Dispatch(session.AddPlayer{Name: "Alice"})
	require.True(t, ok)
	h.Flush()

	stored, ok := st.LoadSession()
	require.True(t, ok)
	assert.Equal(t, snapshot.Session.ID, stored.Session.ID)
	require.Len(t, stored.Session.Players, 1)
	assert.Equal(t, snapshot.Session.Players[0].ID, stored.Session.Players[0].ID)
}

func TestReloadingHostsShareOneStore(t *testing.T) {
	st := store.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(start)
	first := newReloadingHost(t, st, clock)
	second := newReloadingHost(t, st, clock)

	_, ok := first.Dispatch(session.AddPlayer{Name: "Alice"})
	require.True(t, ok)
	first.Flush()
	_, ok = second.Dispatch(session.AddPlayer{Name: "Bob"})
	require.True(t, ok)
	second.Flush()
	snapshot, ok := first.Dispatch(session.AddPlayer{Name: "Carol"})
	require.True(t, ok)
	first.Flush()

	names := func(s model.Snapshot) []string {
		var out []string
		for _, p := range s.Session.Players {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(snapshot))
	stored, ok := st.LoadSession()
	require.True(t, ok)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(stored))

	// A duplicate name written by the other host is seen before the command runs.
	_, ok = second.Dispatch(session.AddPlayer{Name: "carol"})
	assert.False(t, ok)
}

func TestReloadClearsStoredUndoPastExpiry(t *testing.T) {
	st := store.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(start)
	h := newReloadingHost(t, st, clock)

	stale := h.Snapshot()
	stale.Undo = &model.UndoAction{Kind: model.UndoWinner, MatchID: "m1", Court: 1, Timestamp: start.Add(-time.Minute)}
	require.NoError(t, st.SaveSession(stale))

	snapshot, ok := h.Dispatch(session.AddPlayer{Name: "Alice"})
	require.True(t, ok)
	assert.Nil(t, snapshot.Undo)
}
