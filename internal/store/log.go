package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type LogStatus string

const (
	LogAccepted LogStatus = "accepted"
	LogRejected LogStatus = "rejected"
	LogFailed   LogStatus = "failed"
)

// LogEntry is one machine translation outcome for a resource key.
type LogEntry struct {
	ID          string    `json:"id"`
	RunID       string    `json:"runId"`
	Key         string    `json:"key"`
	TargetLang  string    `json:"targetLang"`
	SourceText  string    `json:"sourceText"`
	Translation string    `json:"translation,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Status      LogStatus `json:"status"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LogTranslation appends e to the translation log. ID and CreatedAt are
// filled in when empty.
func (s *Store) LogTranslation(ctx context.Context, e LogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_log (id, run_id, resource_key, target_lang, source_text, translated_text, provider, status, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RunID, e.Key, e.TargetLang, e.SourceText, e.Translation, e.Provider, string(e.Status), e.Detail, e.CreatedAt)
	return err
}

// ListLog returns the log entries of a run in insertion order. An empty runID
// returns the whole log.
func (s *Store) ListLog(ctx context.Context, runID string) ([]LogEntry, error) {
	query := `SELECT id, run_id, resource_key, target_lang, source_text, translated_text, provider, status, detail, created_at FROM translation_log`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var (
			e      LogEntry
			status string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Key, &e.TargetLang, &e.SourceText, &e.Translation, &e.Provider, &status, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = LogStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
