package memory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists memory records in SQLite. One file holds every role's
// partition; rowid preserves insertion order within a role.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenStore(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS memories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	situation TEXT NOT NULL,
	recommendation TEXT NOT NULL,
	embedding TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_memories_role ON memories(role);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create memory schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Append writes one record for role. Safe for concurrent appends.
func (s *Store) Append(role string, rec Record) error {
	embedding, err := json.Marshal(rec.Embedding)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT INTO memories (role, situation, recommendation, embedding) VALUES (?, ?, ?, ?)`,
		role, rec.Situation, rec.Recommendation, string(embedding),
	)
	return err
}

// LoadRole returns every record for role in insertion order.
func (s *Store) LoadRole(role string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT situation, recommendation, embedding FROM memories WHERE role = ? ORDER BY id ASC`,
		role,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var embedding string
		if err := rows.Scan(&rec.Situation, &rec.Recommendation, &embedding); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(embedding), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
