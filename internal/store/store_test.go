package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "openplay.db"), SQLiteOptions{MigrationsDir: "../../migrations"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.LoadSession()
			assert.False(t, ok)

			state := model.Snapshot{Session: session.New(s.GenerateID())}
			state.Session.Location = "Riverside Park"
			state.Session.Players = append(state.Session.Players, model.Player{
				ID: "p1", Name: "Alice", Status: model.StatusCheckedIn, CourtsPlayed: []int{1, 2},
			})
			state.Undo = &model.UndoAction{Kind: model.UndoWinner, MatchID: "m1", Court: 1, Timestamp: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
			require.NoError(t, s.SaveSession(state))

			loaded, ok := s.LoadSession()
			require.True(t, ok)
			assert.Equal(t, state.Session.ID, loaded.Session.ID)
			assert.Equal(t, "Riverside Park", loaded.Session.Location)
			require.Len(t, loaded.Session.Players, 1)
			assert.Equal(t, []int{1, 2}, loaded.Session.Players[0].CourtsPlayed)
			require.NotNil(t, loaded.Undo)
			assert.Equal(t, "m1", loaded.Undo.MatchID)

			require.NoError(t, s.ClearSession())
			_, ok = s.LoadSession()
			assert.False(t, ok)
		})
	}
}

func TestSaveSessionRequiresID(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.SaveSession(model.Snapshot{}))
		})
	}
}

func TestLocationHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < MaxLocations+2; i++ {
				require.NoError(t, s.RecordLocation(model.Location{
					Name:     fmt.Sprintf("Court %d", i),
					Courts:   2,
					LastUsed: base.Add(time.Duration(i) * time.Hour),
				}))
			}
			locations := s.ListLocations()
			require.Len(t, locations, MaxLocations)
			assert.Equal(t, fmt.Sprintf("Court %d", MaxLocations+1), locations[0].Name)

			require.NoError(t, s.RecordLocation(model.Location{Name: "court 5", Courts: 4, LastUsed: base.Add(48 * time.Hour)}))
			locations = s.ListLocations()
			require.Len(t, locations, MaxLocations)
			assert.Equal(t, "court 5", locations[0].Name)
			assert.Equal(t, 4, locations[0].Courts)

			assert.Error(t, s.RecordLocation(model.Location{Name: "  "}))
		})
	}
}

func TestUpdateStatsAccumulates(t *testing.T) {
	played := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.UpdateStats("Alice", model.SkillPro, 3, 1, played))
			require.NoError(t, s.UpdateStats("alice", model.SkillUnset, 1, 2, played.Add(time.Hour)))

			record, ok := s.GetPlayerRecord("ALICE")
			require.True(t, ok)
			assert.Equal(t, "alice", record.Name)
			assert.Equal(t, model.SkillPro, record.Skill)
			assert.Equal(t, 4, record.LifetimeWins)
			assert.Equal(t, 3, record.LifetimeLosses)
			assert.Equal(t, 7, record.LifetimeGames)
			require.NotNil(t, record.LastPlayed)
			assert.True(t, record.LastPlayed.Equal(played.Add(time.Hour)))

			require.NoError(t, s.UpdateStats("Bob", model.SkillBeginner, 0, 1, played))
			records := s.ListPlayerRecords()
			require.Len(t, records, 2)

			_, ok = s.GetPlayerRecord("Carol")
			assert.False(t, ok)
			assert.Error(t, s.UpdateStats("", model.SkillUnset, 1, 0, played))
		})
	}
}

func TestSyncQueue(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.EnqueueSync(model.PendingSync{
				SessionID: "s1",
				Summary:   model.Summary{SessionID: "s1", Location: "Riverside Park", Matches: 3},
				CreatedAt: time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
			assert.NotEmpty(t, first.ID)

			_, err = s.EnqueueSync(model.PendingSync{SessionID: "s2", CreatedAt: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)})
			require.NoError(t, err)

			items := s.ListPendingSyncs()
			require.Len(t, items, 2)
			assert.Equal(t, "s1", items[0].SessionID)
			assert.Equal(t, "Riverside Park", items[0].Summary.Location)
			assert.Equal(t, 3, items[0].Summary.Matches)

			first.Attempts = 2
			first.LastError = "timeout"
			require.NoError(t, s.UpdatePendingSync(first))
			items = s.ListPendingSyncs()
			assert.Equal(t, 2, items[0].Attempts)
			assert.Equal(t, "timeout", items[0].LastError)

			require.NoError(t, s.RemovePendingSync(first.ID))
			assert.ErrorIs(t, s.RemovePendingSync(first.ID), ErrNotFound)
			assert.ErrorIs(t, s.UpdatePendingSync(first), ErrNotFound)
			assert.Len(t, s.ListPendingSyncs(), 1)
		})
	}
}

func TestMutedPreference(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.False(t, s.Muted())
			require.NoError(t, s.SetMuted(true))
			assert.True(t, s.Muted())
			require.NoError(t, s.SetMuted(false))
			assert.False(t, s.Muted())
		})
	}
}
