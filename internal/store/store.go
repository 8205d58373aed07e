// Package store persists evaluated exams in a local sqlite file. One row per
// exam, the full snapshot as a JSON payload: the storage model is a named
// save file, not a queryable database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tyilmaz/optikeval/internal/model"

	_ "modernc.org/sqlite"
)

// ErrExamNotFound is returned when a named exam does not exist.
var ErrExamNotFound = errors.New("exam not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		name TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveExam upserts a snapshot under the given name. Saving over an existing
// name replaces its payload and bumps updated_at; created_at survives.
func (s *Store) SaveExam(name string, snap model.ExamSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO exams (name, created_at, updated_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = ?, payload = ?`,
		name, now, now, string(payload), now, string(payload),
	)
	return err
}

// GetExam loads a snapshot by name.
func (s *Store) GetExam(name string) (model.ExamSnapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM exams WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return model.ExamSnapshot{}, fmt.Errorf("%q: %w", name, ErrExamNotFound)
	}
	if err != nil {
		return model.ExamSnapshot{}, err
	}
	var snap model.ExamSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return model.ExamSnapshot{}, fmt.Errorf("unmarshal snapshot %q: %w", name, err)
	}
	return snap, nil
}

// ListExams returns all stored exams, most recently updated first.
func (s *Store) ListExams() ([]model.ExamInfo, error) {
	rows, err := s.db.Query(`SELECT name, created_at, updated_at FROM exams ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.ExamInfo
	for rows.Next() {
		var info model.ExamInfo
		if err := rows.Scan(&info.Name, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, info)
	}
	return exams, rows.Err()
}

// DeleteExam removes a stored exam by name.
func (s *Store) DeleteExam(name string) error {
	res, err := s.db.Exec(`DELETE FROM exams WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", name, ErrExamNotFound)
	}
	return nil
}

// ExamCount returns the number of stored exams.
func (s *Store) ExamCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams`).Scan(&count)
	return count, err
}
