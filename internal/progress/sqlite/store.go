package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"history-trivia/internal/progress"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps the single UserProgress document in one sqlite row so a save is
// atomic: either the whole new document lands or the prior one stays.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "trivia.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS user_progress (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		document TEXT NOT NULL,
		updated_at_unix INTEGER NOT NULL
	);`)
	return err
}

func (s *Store) Load(ctx context.Context) (*progress.UserProgress, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM user_progress WHERE id = 1`).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, progress.ErrNoProgress
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}

	var record progress.UserProgress
	if err := json.Unmarshal([]byte(document), &record); err != nil {
		return nil, fmt.Errorf("decode progress document: %w", err)
	}
	return &record, nil
}

func (s *Store) Save(ctx context.Context, record *progress.UserProgress) error {
	document, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode progress document: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO user_progress (id, document, updated_at_unix) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at_unix = excluded.updated_at_unix`,
		string(document),
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
