package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB
}

type PostgresOptions struct {
	MigrationsDir string
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	migrationsDir := strings.TrimSpace(opts.MigrationsDir)
	if migrationsDir == "" {
		migrationsDir = "migrations/postgres"
	}
	if err := applyMigrations(db, migrationsDir, postgresDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GenerateID() string {
	return uuid.NewString()
}

func (s *PostgresStore) SaveSession(snapshot model.Snapshot) error {
	if snapshot.Session.ID == "" {
		return errors.New("session id is required")
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO session_snapshots (slot, session_id, document, updated_at) VALUES (1,$1,$2,now())
ON CONFLICT (slot) DO UPDATE SET session_id = excluded.session_id, document = excluded.document, updated_at = excluded.updated_at`,
		snapshot.Session.ID, string(doc),
	)
	return err
}

func (s *PostgresStore) LoadSession() (model.Snapshot, bool) {
	var doc []byte
	if err := s.db.QueryRow(`SELECT document FROM session_snapshots WHERE slot = 1`).Scan(&doc); err != nil {
		return model.Snapshot{}, false
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(doc, &snapshot); err != nil {
		return model.Snapshot{}, false
	}
	return snapshot, true
}

func (s *PostgresStore) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM session_snapshots`)
	return err
}

func (s *PostgresStore) ListLocations() []model.Location {
	rows, err := s.db.Query(`SELECT name, courts, last_used FROM locations ORDER BY last_used DESC LIMIT $1`, MaxLocations)
	if err != nil {
		return nil
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.Name, &l.Courts, &l.LastUsed); err != nil {
			continue
		}
		locations = append(locations, l)
	}
	return locations
}

func (s *PostgresStore) RecordLocation(location model.Location) error {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return errors.New("location name is required")
	}
	if location.LastUsed.IsZero() {
		location.LastUsed = time.Now()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin location tx: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO locations (name_key, name, courts, last_used) VALUES ($1,$2,$3,$4)
ON CONFLICT (name_key) DO UPDATE SET name = excluded.name, courts = excluded.courts, last_used = excluded.last_used`,
		session.NameKey(location.Name), location.Name, location.Courts, location.LastUsed,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM locations WHERE name_key NOT IN (SELECT name_key FROM locations ORDER BY last_used DESC LIMIT $1)`, MaxLocations); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) ListPlayerRecords() []model.PlayerRecord {
	rows, err := s.db.Query(`SELECT name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played FROM player_records ORDER BY name`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	records := []model.PlayerRecord{}
	for rows.Next() {
		record, err := scanPlayerRecord(rows)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

func (s *PostgresStore) GetPlayerRecord(name string) (model.PlayerRecord, bool) {
	row := s.db.QueryRow(`SELECT name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played FROM player_records WHERE name_key = $1`, session.NameKey(name))
	record, err := scanPlayerRecord(row)
	if err != nil {
		return model.PlayerRecord{}, false
	}
	return record, true
}

// UpdateStats increments in SQL so concurrent flushes for one name do not lose games.
func (s *PostgresStore) UpdateStats(name string, skill model.SkillLevel, wins, losses int, playedAt time.Time) error {
	key := session.NameKey(name)
	if key == "" {
		return errors.New("player name is required")
	}
	if !skill.Valid() {
		skill = model.SkillUnset
	}
	var lastPlayed any
	if !playedAt.IsZero() {
		lastPlayed = playedAt
	}
	_, err := s.db.Exec(`INSERT INTO player_records (name_key, name, skill, lifetime_wins, lifetime_losses, lifetime_games, last_played) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (name_key) DO UPDATE SET
  name = excluded.name,
  skill = CASE WHEN excluded.skill > 0 THEN excluded.skill ELSE player_records.skill END,
  lifetime_wins = player_records.lifetime_wins + excluded.lifetime_wins,
  lifetime_losses = player_records.lifetime_losses + excluded.lifetime_losses,
  lifetime_games = player_records.lifetime_games + excluded.lifetime_games,
  last_played = COALESCE(excluded.last_played, player_records.last_played)`,
		key, strings.TrimSpace(name), int(skill), wins, losses, wins+losses, lastPlayed,
	)
	return err
}

func (s *PostgresStore) EnqueueSync(item model.PendingSync) (model.PendingSync, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO pending_syncs (id, session_id, summary, attempts, last_error, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.SessionID, string(toJSON(item.Summary)), item.Attempts, item.LastError, item.CreatedAt,
	)
	if err != nil {
		return model.PendingSync{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListPendingSyncs() []model.PendingSync {
	rows, err := s.db.Query(`SELECT id, session_id, summary, attempts, last_error, created_at FROM pending_syncs ORDER BY created_at`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	items := []model.PendingSync{}
	for rows.Next() {
		var item model.PendingSync
		var summary []byte
		if err := rows.Scan(&item.ID, &item.SessionID, &summary, &item.Attempts, &item.LastError, &item.CreatedAt); err != nil {
			continue
		}
		if len(summary) > 0 {
			_ = json.Unmarshal(summary, &item.Summary)
		}
		items = append(items, item)
	}
	return items
}

func (s *PostgresStore) UpdatePendingSync(item model.PendingSync) error {
	res, err := s.db.Exec(`UPDATE pending_syncs SET attempts = $1, last_error = $2 WHERE id = $3`, item.Attempts, item.LastError, item.ID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RemovePendingSync(id string) error {
	res, err := s.db.Exec(`DELETE FROM pending_syncs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Muted() bool {
	var value string
	if err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = $1`, mutedKey).Scan(&value); err != nil {
		return false
	}
	return value == "true"
}

func (s *PostgresStore) SetMuted(muted bool) error {
	_, err := s.db.Exec(`INSERT INTO preferences (key, value) VALUES ($1,$2) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		mutedKey, fmt.Sprintf("%t", muted),
	)
	return err
}

func scanPlayerRecord(scanner interface{ Scan(dest ...any) error }) (model.PlayerRecord, error) {
	var record model.PlayerRecord
	var skill int
	var lastPlayed sql.NullTime
	if err := scanner.Scan(&record.Name, &skill, &record.LifetimeWins, &record.LifetimeLosses, &record.LifetimeGames, &lastPlayed); err != nil {
		return model.PlayerRecord{}, err
	}
	record.Skill = model.SkillLevel(skill)
	if lastPlayed.Valid {
		played := lastPlayed.Time
		record.LastPlayed = &played
	}
	return record, nil
}
