package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

type SQLiteOptions struct {
	MigrationsDir string
}

func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	migrationsDir := strings.TrimSpace(opts.MigrationsDir)
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := applyMigrations(db, migrationsDir, sqliteDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GenerateID() string {
	return uuid.NewString()
}

func (s *SQLiteStore) SaveSession(snapshot model.Snapshot) error {
	if snapshot.Session.ID == "" {
		return errors.New("session id is required")
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO session_snapshots (slot, session_id, document, updated_at) VALUES (1,?,?,?)
ON CONFLICT (slot) DO UPDATE SET session_id = excluded.session_id, document = excluded.document, updated_at = excluded.updated_at`,
		snapshot.Session.ID, string(doc), timeValueString(time.Now()),
	)
	return err
}

func (s *SQLiteStore) LoadSession() (model.Snapshot, bool) {
	var doc string
	if err := s.db.QueryRow(`SELECT document FROM session_snapshots WHERE slot = 1`).Scan(&doc); err != nil {
		return model.Snapshot{}, false
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal([]byte(doc), &snapshot); err != nil {
		return model.Snapshot{}, false
	}
	return snapshot, true
}

func (s *SQLiteStore) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM session_snapshots`)
	return err
}

func (s *SQLiteStore) ListLocations() []model.Location {
	rows, err := s.db.Query(`SELECT name, courts, last_used FROM locations`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var l model.Location
		var lastUsed sql.NullString
		if err := rows.Scan(&l.Name, &l.Courts, &lastUsed); err != nil {
			continue
		}
		if lastUsed.Valid {
			l.LastUsed, _ = parseTimeString(lastUsed.String)
		}
		locations = append(locations, l)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].LastUsed.After(locations[j].LastUsed) })
	if len(locations) > MaxLocations {
		locations = locations[:MaxLocations]
	}
	return locations
}

func (s *SQLiteStore) RecordLocation(location model.Location) error {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return errors.New("location name is required")
	}
	if location.LastUsed.IsZero() {
		location.LastUsed = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO locations (name_key, name, courts, last_used) VALUES (?,?,?,?)
ON CONFLICT (name_key) DO UPDATE SET name = excluded.name, courts = excluded.courts, last_used = excluded.last_used`,
		session.NameKey(location.Name), location.Name, location.Courts, timeValueString(location.LastUsed),
	)
	if err != nil {
		return err
	}
	return s.pruneLocations()
}

func (s *SQLiteStore) pruneLocations() error {
	rows, err := s.db.Query(`SELECT name_key, last_used FROM locations`)
	if err != nil {
		return err
	}
	type entry struct {
		key      string
		lastUsed time.Time
	}
	entries := []entry{}
	for rows.Next() {
		var e entry
		var lastUsed string
		if err := rows.Scan(&e.key, &lastUsed); err != nil {
			rows.Close()
			return err
		}
		e.lastUsed, _ = parseTimeString(lastUsed)
		entries = append(entries, e)
	}
	rows.Close()
	if len(entries) <= MaxLocations {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].lastUsed.After(entries[j].lastUsed) })
	for _, e := range entries[MaxLocations:] {
		if _, err := s.db.Exec(`DELETE FROM locations WHERE name_key = ?`, e.key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListPlayerRecords() []model.PlayerRecord {
	rows, err := s.db.Query(`SELECT name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played FROM player_records`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	records := []model.PlayerRecord{}
	for rows.Next() {
		record, err := scanSQLitePlayerRecord(rows)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

func (s *SQLiteStore) GetPlayerRecord(name string) (model.PlayerRecord, bool) {
	row := s.db.QueryRow(`SELECT name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played FROM player_records WHERE name_key = ?`, session.NameKey(name))
	record, err := scanSQLitePlayerRecord(row)
	if err != nil {
		return model.PlayerRecord{}, false
	}
	return record, true
}

func (s *SQLiteStore) UpdateStats(name string, skill model.SkillLevel, wins, losses int, playedAt time.Time) error {
	key := session.NameKey(name)
	if key == "" {
		return errors.New("player name is required")
	}
	record, _ := s.GetPlayerRecord(name)
	record = applyStats(record, strings.TrimSpace(name), skill, wins, losses, playedAt)
	_, err := s.db.Exec(`INSERT INTO player_records (name_key, name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played) VALUES (?,?,?,?,?,?,?)
ON CONFLICT (name_key) DO UPDATE SET name = excluded.name, skill = excluded.skill, lifetime_wins = excluded.lifetime_wins,
  lifetime_losses = excluded.lifetime_losses, lifetime_games = excluded.lifetime_games, last_played = excluded.last_played`,
		key, record.Name, int(record.Skill), record.LifetimeWins, record.LifetimeLosses, record.LifetimeGames, timePtrValueString(record.LastPlayed),
	)
	return err
}

func (s *SQLiteStore) EnqueueSync(item model.PendingSync) (model.PendingSync, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO pending_syncs (id, session_id, summary, attempts, last_error, created_at) VALUES (?,?,?,?,?,?)`,
		item.ID, item.SessionID, string(toJSON(item.Summary)), item.Attempts, item.LastError, timeValueString(item.CreatedAt),
	)
	if err != nil {
		return model.PendingSync{}, err
	}
	return item, nil
}

func (s *SQLiteStore) ListPendingSyncs() []model.PendingSync {
	rows, err := s.db.Query(`SELECT id, session_id, summary, attempts, last_error, created_at FROM pending_syncs`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	items := []model.PendingSync{}
	for rows.Next() {
		var item model.PendingSync
		var summary, createdAt sql.NullString
		if err := rows.Scan(&item.ID, &item.SessionID, &summary, &item.Attempts, &item.LastError, &createdAt); err != nil {
			continue
		}
		if summary.Valid && strings.TrimSpace(summary.String) != "" {
			_ = json.Unmarshal([]byte(summary.String), &item.Summary)
		}
		if createdAt.Valid {
			item.CreatedAt, _ = parseTimeString(createdAt.String)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func (s *SQLiteStore) UpdatePendingSync(item model.PendingSync) error {
	res, err := s.db.Exec(`UPDATE pending_syncs SET attempts = ?, last_error = ? WHERE id = ?`, item.Attempts, item.LastError, item.ID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) RemovePendingSync(id string) error {
	res, err := s.db.Exec(`DELETE FROM pending_syncs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Muted() bool {
	var value string
	if err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, mutedKey).Scan(&value); err != nil {
		return false
	}
	return value == "true"
}

func (s *SQLiteStore) SetMuted(muted bool) error {
	_, err := s.db.Exec(`INSERT INTO preferences (key, value) VALUES (?,?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		mutedKey, fmt.Sprintf("%t", muted),
	)
	return err
}

func scanSQLitePlayerRecord(scanner interface{ Scan(dest ...any) error }) (model.PlayerRecord, error) {
	var record model.PlayerRecord
	var skill int
	var lastPlayed sql.NullString
	if err := scanner.Scan(&record.Name, &skill, &record.LifetimeWins, &record.LifetimeLosses, &record.LifetimeGames, &lastPlayed); err != nil {
		return model.PlayerRecord{}, err
	}
	record.Skill = model.SkillLevel(skill)
	if lastPlayed.Valid {
		if parsed, ok := parseTimeString(lastPlayed.String); ok {
			record.LastPlayed = &parsed
		}
	}
	return record, nil
}

func toJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

func timeValueString(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func timePtrValueString(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
