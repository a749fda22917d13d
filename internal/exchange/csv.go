// Package exchange moves resource sets in and out of CSV spreadsheets. Each
// row is one key; each language file contributes one column named after
// the file.
package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/validator"
)

var log = logging.Logger("lrm/exchange")

const (
	KeyColumn     = "Key"
	StatusColumn  = "Status"
	CommentColumn = "Comment"
)

var (
	ErrMissingKeyColumn = errors.New("exchange: CSV must have a 'Key' column")
	ErrNoDefault        = errors.New("exchange: no default language found")
)

// Export writes the keys of the default file, sorted, with one value column
// per file. A non-nil result adds a Status column.
func Export(w io.Writer, files []*resource.File, result *validator.Result) error {
	def := resource.DefaultFile(files)
	if def == nil {
		return ErrNoDefault
	}

	header := []string{KeyColumn}
	header = append(header, lo.Map(files, func(f *resource.File, _ int) string { return f.Language.Name })...)
	if result != nil {
		header = append(header, StatusColumn)
	}
	header = append(header, CommentColumn)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	keys := def.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		row := []string{key}
		for _, f := range files {
			e, _ := f.Lookup(key)
			row = append(row, e.Value)
		}
		if result != nil {
			row = append(row, result.KeyStatus(key))
		}
		e, _ := def.Lookup(key)
		row = append(row, e.Comment)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Row is one parsed CSV line: the key and its values by column header.
type Row struct {
	Key    string
	Values map[string]string
}

// ParseCSV reads rows keyed by the Key column. Rows with a blank key are
// skipped; a later row for the same key replaces an earlier one.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingKeyColumn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	keyIndex := lo.IndexOf(header, KeyColumn)
	if keyIndex < 0 {
		return nil, ErrMissingKeyColumn
	}

	var rows []Row
	index := map[string]int{}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if keyIndex >= len(fields) || strings.TrimSpace(fields[keyIndex]) == "" {
			continue
		}

		row := Row{Key: fields[keyIndex], Values: map[string]string{}}
		for j := 0; j < min(len(header), len(fields)); j++ {
			if j != keyIndex && header[j] != "" {
				row.Values[header[j]] = fields[j]
			}
		}
		if i, ok := index[row.Key]; ok {
			rows[i] = row
			continue
		}
		index[row.Key] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}

// Stats counts what an import did. Added, Updated and Skipped count
// individual values, not rows.
type Stats struct {
	TotalRows int `json:"totalRows"`
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Import applies rows to files. A column matches a file by file name or by
// language label. Existing values change only with overwrite.
func Import(rows []Row, files []*resource.File, overwrite bool) Stats {
	var stats Stats
	for _, row := range rows {
		stats.TotalRows++
		for _, f := range files {
			value, ok := columnValue(row, f.Language)
			if !ok {
				continue
			}
			if _, exists := f.Lookup(row.Key); exists {
				if !overwrite {
					stats.Skipped++
					continue
				}
				f.Set(row.Key, value, "")
				stats.Updated++
				continue
			}
			f.Entries = append(f.Entries, resource.Entry{Key: row.Key, Value: value, Comment: row.Values[CommentColumn]})
			stats.Added++
		}
	}
	log.Debugw("import applied", "rows", stats.TotalRows, "added", stats.Added, "updated", stats.Updated, "skipped", stats.Skipped)
	return stats
}

func columnValue(row Row, lang resource.Language) (string, bool) {
	if v, ok := row.Values[lang.Name]; ok {
		return v, true
	}
	v, ok := row.Values[lang.Label()]
	return v, ok
}
