package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kazuph/slack-bridge/internal/models"
)

// Store is the answer audit log. It records every resolution (answer or
// timeout) so answered questions can be reviewed after the fact; it is
// never used to restore pending waiters across restarts.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dbPath, runs schema
// initialization, and configures WAL mode.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		option_index INTEGER NOT NULL,
		free_text INTEGER NOT NULL DEFAULT 0,
		source TEXT NOT NULL,
		session_info TEXT NOT NULL DEFAULT '',
		pane_id TEXT NOT NULL DEFAULT '',
		asked_at INTEGER NOT NULL,
		answered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);
	CREATE INDEX IF NOT EXISTS idx_answers_answered_at ON answers(answered_at);`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one resolution to the log.
func (s *Store) Record(rec models.AnswerRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO answers
			(question_id, question, answer, option_index, free_text, source, session_info, pane_id, asked_at, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.QuestionID, rec.Question, rec.Answer, rec.OptionIndex,
		boolToInt(rec.FreeText), string(rec.Source), rec.SessionInfo, rec.PaneID,
		rec.AskedAt, rec.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("insert answer record: %w", err)
	}
	return nil
}

// ListRecent returns the most recent resolutions, newest first.
func (s *Store) ListRecent(limit int) ([]models.AnswerRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, question_id, question, answer, option_index, free_text, source, session_info, pane_id, asked_at, answered_at
		 FROM answers ORDER BY answered_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list answer records: %w", err)
	}
	defer rows.Close()

	var records []models.AnswerRecord
	for rows.Next() {
		var rec models.AnswerRecord
		var freeText int
		var source string
		if err := rows.Scan(
			&rec.ID, &rec.QuestionID, &rec.Question, &rec.Answer, &rec.OptionIndex,
			&freeText, &source, &rec.SessionInfo, &rec.PaneID, &rec.AskedAt, &rec.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("scan answer record: %w", err)
		}
		rec.FreeText = freeText != 0
		rec.Source = models.AnswerSource(source)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of recorded resolutions. Used by the
// health check to prove the database is reachable.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM answers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count answer records: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
