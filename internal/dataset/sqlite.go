package dataset

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mbella-dev/questforge/internal/question"
)

// ErrNotFound is returned when a dataset id does not exist.
var ErrNotFound = errors.New("dataset not found")

// Meta describes one stored dataset.
type Meta struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Source    string    `json:"source"`
	ItemCount int       `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists scored question datasets in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the dataset database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			source TEXT,
			item_count INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			dataset_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			answer TEXT NOT NULL,
			category TEXT,
			difficulty TEXT,
			explanation TEXT,
			quality_score REAL,
			FOREIGN KEY (dataset_id) REFERENCES datasets(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_dataset ON items(dataset_id)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// SaveDataset stores items as a new dataset and returns its metadata.
// The insert runs in one transaction so a failed save leaves nothing behind.
func (s *Store) SaveDataset(topic, source string, items []question.Item) (Meta, error) {
	meta := Meta{
		ID:        uuid.NewString(),
		Topic:     topic,
		Source:    source,
		ItemCount: len(items),
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Meta{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO datasets (id, topic, source, item_count, created_at) VALUES (?, ?, ?, ?, ?)",
		meta.ID, meta.Topic, meta.Source, meta.ItemCount, meta.CreatedAt,
	); err != nil {
		return Meta{}, fmt.Errorf("insert dataset: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO items (id, dataset_id, position, question, options, answer, category, difficulty, explanation, quality_score) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return Meta{}, fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		optionsJSON, err := json.Marshal(it.Options)
		if err != nil {
			return Meta{}, fmt.Errorf("marshal options for item %d: %w", i, err)
		}
		var score sql.NullFloat64
		if it.QualityScore != nil {
			score = sql.NullFloat64{Float64: *it.QualityScore, Valid: true}
		}
		if _, err := stmt.Exec(
			id, meta.ID, i, it.Question, string(optionsJSON), it.Answer,
			it.Category, it.Difficulty, it.Explanation, score,
		); err != nil {
			return Meta{}, fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Meta{}, fmt.Errorf("commit dataset: %w", err)
	}
	return meta, nil
}

// LoadDataset returns the items of one dataset in stored order.
func (s *Store) LoadDataset(id string) ([]question.Item, error) {
	rows, err := s.db.Query(
		"SELECT id, question, options, answer, category, difficulty, explanation, quality_score FROM items WHERE dataset_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []question.Item
	for rows.Next() {
		var it question.Item
		var optionsJSON string
		var score sql.NullFloat64
		if err := rows.Scan(&it.ID, &it.Question, &optionsJSON, &it.Answer,
			&it.Category, &it.Difficulty, &it.Explanation, &score); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &it.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		if score.Valid {
			v := score.Float64
			it.QualityScore = &v
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	if items == nil {
		if _, err := s.GetMeta(id); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// GetMeta returns metadata for one dataset.
func (s *Store) GetMeta(id string) (Meta, error) {
	var m Meta
	err := s.db.QueryRow(
		"SELECT id, topic, source, item_count, created_at FROM datasets WHERE id = ?", id,
	).Scan(&m.ID, &m.Topic, &m.Source, &m.ItemCount, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Meta{}, ErrNotFound
		}
		return Meta{}, fmt.Errorf("get dataset: %w", err)
	}
	return m, nil
}

// ListDatasets returns dataset metadata newest first, optionally limited.
func (s *Store) ListDatasets(limit int) ([]Meta, error) {
	query := "SELECT id, topic, source, item_count, created_at FROM datasets ORDER BY created_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Topic, &m.Source, &m.ItemCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return metas, nil
}
