package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LanguageFileExists reports whether a file for code already exists in dir.
func LanguageFileExists(format Format, dir, baseName, code string) bool {
	_, err := os.Stat(filepath.Join(dir, LanguageFileName(format, baseName, code)))
	return err == nil
}

// NewLanguageFile prepares (without writing) a file for a new culture. With
// copyFrom the keys and comments are copied and, when copyValues is set,
// the values as well.
func NewLanguageFile(format Format, dir, baseName, code string, copyFrom *File, copyValues bool) (*File, error) {
	if !IsValidCultureCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCulture, code)
	}
	if LanguageFileExists(format, dir, baseName, code) {
		return nil, fmt.Errorf("%w: %s", ErrLanguageExists, code)
	}

	name := LanguageFileName(format, baseName, code)
	file := &File{
		Language: Language{
			BaseName: baseName,
			Code:     code,
			Name:     name,
			FilePath: filepath.Join(dir, name),
		},
		Entries: []Entry{},
	}
	if copyFrom != nil {
		for _, e := range copyFrom.Entries {
			entry := Entry{Key: e.Key, Comment: e.Comment}
			if copyValues {
				entry.Value = e.Value
			}
			file.Entries = append(file.Entries, entry)
		}
	}
	return file, nil
}

// DeleteLanguageFile removes the file of a non-default language.
func DeleteLanguageFile(lang Language) error {
	if lang.IsDefault {
		return ErrDefaultLanguage
	}
	err := os.Remove(lang.FilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, lang.FilePath)
	}
	return err
}

// AddKey appends key to every file. values maps language labels ("default",
// "fr", ...) to values; languages without a value get an empty entry.
func AddKey(files []*File, key string, values map[string]string, comment string) error {
	for _, f := range files {
		if f.Occurrences(key) > 0 {
			return fmt.Errorf("%w: %q in %s", ErrKeyExists, key, f.Language.Name)
		}
	}
	for _, f := range files {
		f.Entries = append(f.Entries, Entry{Key: key, Value: values[f.Language.Label()], Comment: comment})
	}
	return nil
}

// UpdateKey sets the values given for key. Files without the key get it
// appended. It returns the files that changed.
func UpdateKey(files []*File, key string, values map[string]string, comment string) ([]*File, error) {
	var found bool
	for _, f := range files {
		if f.Occurrences(key) > 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}

	var changed []*File
	for _, f := range files {
		value, ok := values[f.Language.Label()]
		if !ok && comment == "" {
			continue
		}
		if !ok {
			e, _ := f.Lookup(key)
			value = e.Value
		}
		f.Set(key, value, comment)
		changed = append(changed, f)
	}
	return changed, nil
}

// DeleteKey removes key from every file. With occurrence > 0 only that
// (1-based) occurrence is removed, which is how a single duplicate is
// dropped. It returns the number of entries removed.
func DeleteKey(files []*File, key string, occurrence int) (int, error) {
	removed := 0
	for _, f := range files {
		kept := f.Entries[:0]
		seen := 0
		for _, e := range f.Entries {
			if e.Key == key {
				seen++
				if occurrence <= 0 || seen == occurrence {
					removed++
					continue
				}
			}
			kept = append(kept, e)
		}
		f.Entries = kept
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return removed, nil
}

// MergeStrategy selects which duplicate survives MergeDuplicates.
type MergeStrategy int

const (
	KeepFirst MergeStrategy = iota
	KeepLast
	// KeepFirstNonEmpty keeps the first occurrence with a value.
	KeepFirstNonEmpty
)

// MergeDuplicates collapses repeated keys of file into one entry at the
// position of the first occurrence. An empty key merges every duplicated
// key. It returns the number of entries removed.
func MergeDuplicates(file *File, key string, strategy MergeStrategy) int {
	groups := map[string][]Entry{}
	for _, e := range file.Entries {
		if key == "" || e.Key == key {
			groups[e.Key] = append(groups[e.Key], e)
		}
	}

	removed := 0
	written := map[string]bool{}
	merged := make([]Entry, 0, len(file.Entries))
	for _, e := range file.Entries {
		group, ok := groups[e.Key]
		if !ok || len(group) < 2 {
			merged = append(merged, e)
			continue
		}
		if written[e.Key] {
			removed++
			continue
		}
		written[e.Key] = true
		merged = append(merged, pick(group, strategy))
	}
	file.Entries = merged
	return removed
}

func pick(group []Entry, strategy MergeStrategy) Entry {
	switch strategy {
	case KeepLast:
		return group[len(group)-1]
	case KeepFirstNonEmpty:
		for _, e := range group {
			if !e.IsEmpty() {
				return e
			}
		}
	}
	return group[0]
}

// ParseMergeStrategy accepts "first", "last" and "first-non-empty".
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch s {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	case "first-non-empty", "non-empty":
		return KeepFirstNonEmpty, nil
	}
	return 0, fmt.Errorf("unknown merge strategy %q", s)
}
