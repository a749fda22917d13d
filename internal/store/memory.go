package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string    `json:"id"`
	SourceText  string    `json:"sourceText"`
	SourceLang  string    `json:"sourceLang"`
	TargetLang  string    `json:"targetLang"`
	Translation string    `json:"translation"`
	Provider    string    `json:"provider"`
	UsageCount  int       `json:"usageCount"`
	Invalidated bool      `json:"invalidated"`
	LastUsed    time.Time `json:"lastUsed"`
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int `json:"totalEntries"`
	ActiveEntries  int `json:"activeEntries"`
	InvalidEntries int `json:"invalidEntries"`
	TotalUsage     int `json:"totalUsage"`
}

// GetCachedTranslation returns the remembered translation of sourceText and
// bumps its usage counter. Invalidated entries are misses.
func (s *Store) GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error) {
	var (
		id          string
		translated  string
		invalidated bool
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, translated_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		normalizeText(sourceText), sourceLang, targetLang).Scan(&id, &translated, &invalidated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE id = ?`,
		s.now(), id)
	return translated, true, err
}

// SaveToMemory stores a translation. Saving the same source and language pair
// again replaces the text and revalidates the entry.
func (s *Store) SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, translated, provider string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_memory (id, source_text, source_lang, target_lang, translated_text, provider, usage_count, invalidated, last_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)
		 ON CONFLICT(source_text, source_lang, target_lang) DO UPDATE SET
			translated_text = excluded.translated_text,
			provider = excluded.provider,
			invalidated = FALSE,
			last_used = excluded.last_used`,
		uuid.NewString(), normalizeText(sourceText), sourceLang, targetLang, translated, provider, now, now)
	return err
}

// InvalidateMemory keeps the entry but stops it from being served.
func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	return rowsAffected(s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id))
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	return rowsAffected(s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id))
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, translated_text, provider, usage_count, invalidated, last_used
		 FROM translation_memory ORDER BY last_used DESC, source_text`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.Translation, &e.Provider, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// levenshtein returns the rune-aware edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// similarity returns a score in [0, 1] where 1 means identical.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

const maxFuzzyRunes = 1000

// FuzzyGetCachedTranslation returns the active entry whose source text is the
// most similar to sourceText with a score of at least threshold. A threshold
// of zero or less disables the lookup. Texts longer than maxFuzzyRunes are
// never fuzzy-matched.
func (s *Store) FuzzyGetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string, threshold float64) (string, bool, error) {
	if threshold <= 0 {
		return "", false, nil
	}

	normalized := normalizeText(sourceText)
	n := len([]rune(normalized))
	if n > maxFuzzyRunes {
		return "", false, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_text, translated_text FROM translation_memory
		 WHERE source_lang = ? AND target_lang = ? AND NOT invalidated`,
		sourceLang, targetLang)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	var best string
	bestScore := 0.0
	for rows.Next() {
		var src, translated string
		if err := rows.Scan(&src, &translated); err != nil {
			return "", false, err
		}

		// The length difference alone bounds the score from above.
		m := len([]rune(src))
		if longest := max(n, m); longest > 0 {
			diff := n - m
			if diff < 0 {
				diff = -diff
			}
			if 1-float64(diff)/float64(longest) < threshold {
				continue
			}
		}

		if score := similarity(normalized, src); score >= threshold && score > bestScore {
			bestScore = score
			best = translated
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}

	if best == "" {
		return "", false, nil
	}
	log.Debugw("fuzzy memory hit", "score", bestScore, "target", targetLang)
	return best, true, nil
}
