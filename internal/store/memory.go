package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu        sync.RWMutex
	snapshot  *model.Snapshot
	locations []model.Location
	records   map[string]model.PlayerRecord
	pending   map[string]model.PendingSync
	muted     bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.PlayerRecord),
		pending: make(map[string]model.PendingSync),
	}
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GenerateID() string {
	return uuid.NewString()
}

func (s *MemoryStore) SaveSession(snapshot model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Session.ID == "" {
		return errors.New("session id is required")
	}
	copied := session.Clone(snapshot)
	s.snapshot = &copied
	return nil
}

func (s *MemoryStore) LoadSession() (model.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return model.Snapshot{}, false
	}
	return session.Clone(*s.snapshot), true
}

func (s *MemoryStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = nil
	return nil
}

func (s *MemoryStore) ListLocations() []model.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locations := make([]model.Location, len(s.locations))
	copy(locations, s.locations)
	return locations
}

func (s *MemoryStore) RecordLocation(location model.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return errors.New("location name is required")
	}
	if location.LastUsed.IsZero() {
		location.LastUsed = time.Now()
	}
	locations := []model.Location{location}
	for _, l := range s.locations {
		if !session.SameName(l.Name, location.Name) {
			locations = append(locations, l)
		}
	}
	if len(locations) > MaxLocations {
		locations = locations[:MaxLocations]
	}
	s.locations = locations
	return nil
}

func (s *MemoryStore) ListPlayerRecords() []model.PlayerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.PlayerRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

func (s *MemoryStore) GetPlayerRecord(name string) (model.PlayerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[session.NameKey(name)]
	return r, ok
}

func (s *MemoryStore) UpdateStats(name string, skill model.SkillLevel, wins, losses int, playedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := session.NameKey(name)
	if key == "" {
		return errors.New("player name is required")
	}
	s.records[key] = applyStats(s.records[key], strings.TrimSpace(name), skill, wins, losses, playedAt)
	return nil
}

func (s *MemoryStore) EnqueueSync(item model.PendingSync) (model.PendingSync, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.pending[item.ID] = item
	return item, nil
}

func (s *MemoryStore) ListPendingSyncs() []model.PendingSync {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.PendingSync, 0, len(s.pending))
	for _, item := range s.pending {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func (s *MemoryStore) UpdatePendingSync(item model.PendingSync) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[item.ID]; !ok {
		return ErrNotFound
	}
	s.pending[item.ID] = item
	return nil
}

func (s *MemoryStore) RemovePendingSync(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return ErrNotFound
	}
	delete(s.pending, id)
	return nil
}

func (s *MemoryStore) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.muted
}

func (s *MemoryStore) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.muted = muted
	return nil
}
