package store

import (
	"errors"
	"time"

	"openplay-app/internal/model"
)

// MaxLocations caps the location history.
const MaxLocations = 10

const mutedKey = "announcer_muted"

var ErrNotFound = errors.New("not found")

type Store interface {
	SessionStore
	LocationHistory
	PlayerDirectory
	SyncQueue
	Preferences
	Close() error
}

// SessionStore keeps the single current session document.
type SessionStore interface {
	SaveSession(snapshot model.Snapshot) error
	LoadSession() (model.Snapshot, bool)
	ClearSession() error
	GenerateID() string
}

// LocationHistory is most-recent-first and capped at MaxLocations.
type LocationHistory interface {
	ListLocations() []model.Location
	RecordLocation(location model.Location) error
}

// PlayerDirectory keeps lifetime records keyed by case-insensitive name.
type PlayerDirectory interface {
	ListPlayerRecords() []model.PlayerRecord
	GetPlayerRecord(name string) (model.PlayerRecord, bool)
	UpdateStats(name string, skill model.SkillLevel, wins, losses int, playedAt time.Time) error
}

// SyncQueue holds ended sessions waiting for a successful cloud upload.
type SyncQueue interface {
	EnqueueSync(item model.PendingSync) (model.PendingSync, error)
	ListPendingSyncs() []model.PendingSync
	UpdatePendingSync(item model.PendingSync) error
	RemovePendingSync(id string) error
}

type Preferences interface {
	Muted() bool
	SetMuted(muted bool) error
}

// applyStats folds one session's results into a lifetime record.
func applyStats(record model.PlayerRecord, name string, skill model.SkillLevel, wins, losses int, playedAt time.Time) model.PlayerRecord {
	record.Name = name
	if skill.Valid() {
		record.Skill = skill
	}
	record.LifetimeWins += wins
	record.LifetimeLosses += losses
	record.LifetimeGames += wins + losses
	if !playedAt.IsZero() {
		played := playedAt
		record.LastPlayed = &played
	}
	return record
}
