// Package host runs a session: it serializes commands through session.Reduce
// and performs everything the reducer must not, after each commit.
package host

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"openplay-app/internal/cloudsync"
	"openplay-app/internal/model"
	"openplay-app/internal/session"
	"openplay-app/internal/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	DefaultUndoExpiry        = 10 * time.Second
	DefaultSyncRetryInterval = 5 * time.Minute

	syncTimeout = 30 * time.Second
)

var ErrClosed = errors.New("host closed")

type Options struct {
	Store  store.Store
	Syncer cloudsync.Syncer
	Clock  clockwork.Clock
	Rand   *rand.Rand
	Logger *zap.Logger
	// Metrics defaults to an unregistered set.
	Metrics           *Metrics
	UndoExpiry        time.Duration
	SyncRetryInterval time.Duration
	Announcers        []Announcer
	Listeners         []Listener
	// ReloadEachDispatch re-reads the stored snapshot before every command,
	// for runtimes where several short-lived hosts share one store.
	ReloadEachDispatch bool
}

// Host owns the current snapshot. Create it with New and release it with Close.
type Host struct {
	mu         sync.Mutex
	state      model.Snapshot
	closed     bool
	undoTimer  clockwork.Timer
	announcers []Announcer
	listeners  []Listener

	store      store.Store
	syncer     cloudsync.Syncer
	clock      clockwork.Clock
	rng        *rand.Rand
	log        *zap.Logger
	metrics    *Metrics
	undoExpiry time.Duration
	reload     bool

	effects   *effects
	scheduler gocron.Scheduler
	retryMu   sync.Mutex
	wg        sync.WaitGroup
}

// New restores the stored snapshot, or starts a fresh session, and schedules
// retries of pending cloud syncs.
func New(opts Options) (*Host, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	h := &Host{
		store:      opts.Store,
		syncer:     opts.Syncer,
		clock:      opts.Clock,
		rng:        opts.Rand,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		undoExpiry: opts.UndoExpiry,
		reload:     opts.ReloadEachDispatch,
		announcers: append([]Announcer(nil), opts.Announcers...),
		listeners:  append([]Listener(nil), opts.Listeners...),
	}
	if h.clock == nil {
		h.clock = clockwork.NewRealClock()
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewSource(h.clock.Now().UnixNano()))
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = NewMetrics(nil)
	}
	if h.undoExpiry <= 0 {
		h.undoExpiry = DefaultUndoExpiry
	}

	if snapshot, ok := h.store.LoadSession(); ok {
		h.state = snapshot
		h.log.Info("session restored", zap.String("session_id", snapshot.Session.ID), zap.String("phase", string(session.PhaseOf(snapshot.Session))))
	} else {
		h.state = model.Snapshot{Session: session.New(h.store.GenerateID())}
		if err := h.store.SaveSession(h.state); err != nil {
			return nil, err
		}
	}
	h.effects = newEffects()

	if h.syncer != nil {
		interval := opts.SyncRetryInterval
		if interval <= 0 {
			interval = DefaultSyncRetryInterval
		}
		if err := h.startRetryJob(interval); err != nil {
			h.effects.close()
			return nil, err
		}
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.retryPending()
		}()
	}

	h.mu.Lock()
	h.restoreUndo()
	h.mu.Unlock()
	return h, nil
}

// AddAnnouncer and AddListener register hooks that live as long as the host.
func (h *Host) AddAnnouncer(a Announcer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.announcers = append(h.announcers, a)
}

func (h *Host) AddListener(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *Host) Snapshot() model.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return session.Clone(h.state)
}

// Dispatch applies cmd and reports whether the session changed. Side effects
// of a change are queued and never delay the caller.
func (h *Host) Dispatch(cmd session.Command) (model.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return session.Clone(h.state), false
	}
	if h.reload {
		h.reloadState()
	}
	applied := h.apply(cmd)
	return session.Clone(h.state), applied
}

func (h *Host) apply(cmd session.Command) bool {
	prev := h.state
	now := h.clock.Now()
	env := session.Env{Now: now, Rand: h.rng, NewID: h.store.GenerateID}
	next, applied := session.Reduce(prev, cmd, env)
	h.metrics.commands.WithLabelValues(cmd.Kind(), strconv.FormatBool(applied)).Inc()
	if !applied {
		h.log.Debug("command ignored", zap.String("kind", cmd.Kind()))
		return false
	}
	h.state = next
	h.log.Debug("command applied", zap.String("kind", cmd.Kind()), zap.String("session_id", next.Session.ID))

	h.trackUndo(prev.Undo, next.Undo)

	events := announcements(prev, next, now)
	for _, e := range events {
		switch e.Kind {
		case EventMatchFormed:
			h.metrics.matchesFormed.Inc()
		case EventWinnerRecorded:
			h.metrics.resultsRecorded.Inc()
		}
	}

	snapshot := session.Clone(next)
	announcers := append([]Announcer(nil), h.announcers...)
	listeners := append([]Listener(nil), h.listeners...)
	h.effects.push(func() {
		h.persist(snapshot)
		for _, l := range listeners {
			l.SnapshotChanged(snapshot)
		}
		if len(events) > 0 && !h.store.Muted() {
			for _, e := range events {
				for _, a := range announcers {
					a.Announce(context.Background(), e)
				}
			}
		}
	})

	switch cmd.(type) {
	case session.StartSession:
		location := model.Location{Name: snapshot.Session.Location, Courts: snapshot.Session.Courts, LastUsed: now}
		h.effects.push(func() { h.recordLocation(location) })
	case session.EndSession:
		h.effects.push(func() { h.finish(snapshot.Session) })
	}
	return true
}

// reloadState adopts the stored snapshot once this host's own writes have
// landed. Callers hold h.mu.
func (h *Host) reloadState() {
	h.effects.flush()
	snapshot, ok := h.store.LoadSession()
	if !ok {
		return
	}
	prev := h.state.Undo
	h.state = snapshot
	if prev != nil && snapshot.Undo != nil && *prev == *snapshot.Undo {
		return
	}
	h.stopUndoTimer()
	h.restoreUndo()
}

func (h *Host) persist(snapshot model.Snapshot) {
	if err := h.store.SaveSession(snapshot); err != nil {
		h.log.Error("save session failed", zap.String("session_id", snapshot.Session.ID), zap.Error(err))
	}
}

func (h *Host) recordLocation(location model.Location) {
	if err := h.store.RecordLocation(location); err != nil {
		h.log.Warn("record location failed", zap.String("location", location.Name), zap.Error(err))
	}
}

// finish flushes lifetime stats and publishes the summary of an ended session.
func (h *Host) finish(s model.Session) {
	playedAt := h.clock.Now()
	if s.EndTime != nil {
		playedAt = *s.EndTime
	}
	for _, p := range s.Players {
		if p.GamesPlayed == 0 {
			continue
		}
		if err := h.store.UpdateStats(p.Name, p.Skill, p.Wins, p.Losses, playedAt); err != nil {
			h.log.Warn("update player stats failed", zap.String("player", p.Name), zap.Error(err))
		}
	}
	if h.syncer == nil {
		return
	}
	summary := BuildSummary(s)
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	url, err := h.syncer.Sync(ctx, summary)
	if err == nil {
		h.log.Info("session synced", zap.String("session_id", s.ID), zap.String("url", url))
		return
	}
	h.metrics.syncFailures.Inc()
	h.log.Warn("session sync failed, queued for retry", zap.String("session_id", s.ID), zap.Error(err))
	if _, qerr := h.store.EnqueueSync(model.PendingSync{
		SessionID: s.ID,
		Summary:   summary,
		Attempts:  1,
		LastError: err.Error(),
		CreatedAt: playedAt,
	}); qerr != nil {
		h.log.Error("enqueue sync failed", zap.String("session_id", s.ID), zap.Error(qerr))
	}
}

// Flush waits for every side effect queued so far.
func (h *Host) Flush() {
	h.effects.flush()
}

func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	h.closed = true
	if h.undoTimer != nil {
		h.undoTimer.Stop()
		h.undoTimer = nil
	}
	h.mu.Unlock()

	var err error
	if h.scheduler != nil {
		err = h.scheduler.Shutdown()
	}
	h.wg.Wait()
	h.effects.close()
	return err
}
