// Package resource models multi-language key/value resource sets: one file
// per language, a default file without a culture suffix, and the formats
// these files are stored in.
package resource

import (
	"errors"
	"strings"
)

var (
	ErrFileNotFound      = errors.New("resource: file not found")
	ErrDirectoryNotFound = errors.New("resource: directory not found")
	ErrNoResources       = errors.New("resource: no resource files found")
	ErrInvalidCulture    = errors.New("resource: invalid culture code")
	ErrLanguageExists    = errors.New("resource: language file already exists")
	ErrDefaultLanguage   = errors.New("resource: cannot remove the default language")
	ErrKeyExists         = errors.New("resource: key already exists")
	ErrKeyNotFound       = errors.New("resource: key not found")
	ErrUnknownFormat     = errors.New("resource: unknown format")
)

// Entry is one key/value record.
type Entry struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// IsEmpty reports whether the value is blank.
func (e Entry) IsEmpty() bool {
	return strings.TrimSpace(e.Value) == ""
}

// Language describes one file of a resource set. The default language has
// an empty Code.
type Language struct {
	BaseName  string `json:"baseName"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	FilePath  string `json:"filePath"`
}

// DisplayName is the English name of the language, or "Default".
func (l Language) DisplayName() string {
	if l.IsDefault {
		return "Default"
	}
	return DisplayName(l.Code)
}

// Label is the language code, or "default" for the default file.
func (l Language) Label() string {
	if l.IsDefault {
		return "default"
	}
	return l.Code
}

// File is the parsed content of one language file. Entries keep file order
// and may contain the same key more than once.
type File struct {
	Language Language `json:"language"`
	Entries  []Entry  `json:"entries"`
}

func (f *File) Count() int {
	return len(f.Entries)
}

// CompletedCount is the number of entries with a non-blank value.
func (f *File) CompletedCount() int {
	n := 0
	for _, e := range f.Entries {
		if !e.IsEmpty() {
			n++
		}
	}
	return n
}

// CompletionPercentage is CompletedCount as a percentage of Count.
func (f *File) CompletionPercentage() float64 {
	if len(f.Entries) == 0 {
		return 0
	}
	return float64(f.CompletedCount()) / float64(len(f.Entries)) * 100
}

// Lookup returns the first entry with key.
func (f *File) Lookup(key string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Occurrences returns how many entries carry key.
func (f *File) Occurrences(key string) int {
	n := 0
	for _, e := range f.Entries {
		if e.Key == key {
			n++
		}
	}
	return n
}

// Keys returns the distinct keys in file order.
func (f *File) Keys() []string {
	seen := make(map[string]bool, len(f.Entries))
	keys := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// Set updates the first entry with key or appends a new one.
func (f *File) Set(key, value, comment string) {
	for i := range f.Entries {
		if f.Entries[i].Key == key {
			f.Entries[i].Value = value
			if comment != "" {
				f.Entries[i].Comment = comment
			}
			return
		}
	}
	f.Entries = append(f.Entries, Entry{Key: key, Value: value, Comment: comment})
}

// DefaultFile returns the default language file of files, if any.
func DefaultFile(files []*File) *File {
	for _, f := range files {
		if f.Language.IsDefault {
			return f
		}
	}
	return nil
}

// FindFile returns the file for a language code. "default" and "" select
// the default file.
func FindFile(files []*File, code string) *File {
	if code == "" || strings.EqualFold(code, "default") {
		return DefaultFile(files)
	}
	for _, f := range files {
		if !f.Language.IsDefault && strings.EqualFold(f.Language.Code, code) {
			return f
		}
	}
	return nil
}
