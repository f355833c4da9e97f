// Date-bucketed ledger of submitted applications. Records are immutable
// once written; the only read paths are the daily quota count and the
// same-day (title, company) duplicate check.

package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type AppliedRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	SubmittedAt  time.Time `json:"submittedAt"`
	FormSnapshot string    `json:"formSnapshot"`
}

type Ledger struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS applied (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	company       TEXT NOT NULL,
	location      TEXT,
	day           TEXT NOT NULL,
	submitted_at  TEXT NOT NULL,
	form_snapshot TEXT,
	UNIQUE(title, company, day)
);`

func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Append writes a record into its date bucket. Returns false without
// writing when a record with the same (title, company) already exists
// for that day.
func (l *Ledger) Append(rec AppliedRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now()
	}

	res, err := l.db.Exec(
		`INSERT OR IGNORE INTO applied (id, title, company, location, day, submitted_at, form_snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Company, rec.Location,
		dayBucket(rec.SubmittedAt), rec.SubmittedAt.Format(time.RFC3339), rec.FormSnapshot,
	)
	if err != nil {
		return false, fmt.Errorf("failed to append applied record: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CountForDay reports how many submissions the given day's bucket holds.
func (l *Ledger) CountForDay(day time.Time) (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM applied WHERE day = ?`, dayBucket(day)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applied records: %w", err)
	}
	return count, nil
}

// RecordsForDay lists a day's bucket, newest first.
func (l *Ledger) RecordsForDay(day time.Time) ([]AppliedRecord, error) {
	rows, err := l.db.Query(
		`SELECT id, title, company, location, submitted_at, form_snapshot
		 FROM applied WHERE day = ? ORDER BY submitted_at DESC`, dayBucket(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied records: %w", err)
	}
	defer rows.Close()

	var records []AppliedRecord
	for rows.Next() {
		var rec AppliedRecord
		var submittedAt string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Company, &rec.Location, &submittedAt, &rec.FormSnapshot); err != nil {
			return nil, err
		}
		rec.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func dayBucket(t time.Time) string {
	return t.Format("2006-01-02")
}
