// Package validator checks a resource set for consistency across languages:
// missing, extra, duplicate and empty keys, placeholder mismatches between
// the default value and each translation, and values written in the wrong
// language.
package validator

import (
	"fmt"
	"sort"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/detector"
	"github.com/valpere/lrm/internal/placeholder"
	"github.com/valpere/lrm/internal/resource"
)

var log = logging.Logger("lrm/validator")

// KeyMismatch is a key whose translation does not carry the placeholders of
// the default value.
type KeyMismatch struct {
	Key    string                       `json:"key"`
	Result placeholder.ValidationResult `json:"result"`
}

// LanguageMismatch is a value that reads as another language.
type LanguageMismatch struct {
	Key      string `json:"key"`
	Detected string `json:"detected"`
}

// Result groups issues by language label ("default", "fr", ...). A language
// appears in a map only when it has at least one issue of that kind.
type Result struct {
	MissingKeys           map[string][]string           `json:"missingKeys"`
	ExtraKeys             map[string][]string           `json:"extraKeys"`
	EmptyValues           map[string][]string           `json:"emptyValues"`
	DuplicateKeys         map[string][]string           `json:"duplicateKeys"`
	PlaceholderMismatches map[string][]KeyMismatch      `json:"placeholderMismatches"`
	LanguageMismatches    map[string][]LanguageMismatch `json:"languageMismatches,omitempty"`
}

func newResult() *Result {
	return &Result{
		MissingKeys:           map[string][]string{},
		ExtraKeys:             map[string][]string{},
		EmptyValues:           map[string][]string{},
		DuplicateKeys:         map[string][]string{},
		PlaceholderMismatches: map[string][]KeyMismatch{},
		LanguageMismatches:    map[string][]LanguageMismatch{},
	}
}

// Summary holds issue counts per kind.
type Summary struct {
	HasIssues        bool `json:"hasIssues"`
	MissingCount     int  `json:"missingCount"`
	ExtraCount       int  `json:"extraCount"`
	EmptyCount       int  `json:"emptyCount"`
	DuplicatesCount  int  `json:"duplicatesCount"`
	PlaceholderCount int  `json:"placeholderCount"`
	LanguageCount    int  `json:"languageCount"`
	TotalIssues      int  `json:"totalIssues"`
}

func countAll[V any](m map[string][]V) int {
	return lo.SumBy(lo.Values(m), func(v []V) int { return len(v) })
}

func (r *Result) Summary() Summary {
	s := Summary{
		MissingCount:     countAll(r.MissingKeys),
		ExtraCount:       countAll(r.ExtraKeys),
		EmptyCount:       countAll(r.EmptyValues),
		DuplicatesCount:  countAll(r.DuplicateKeys),
		PlaceholderCount: countAll(r.PlaceholderMismatches),
		LanguageCount:    countAll(r.LanguageMismatches),
	}
	s.TotalIssues = s.MissingCount + s.ExtraCount + s.EmptyCount + s.DuplicatesCount + s.PlaceholderCount + s.LanguageCount
	s.HasIssues = s.TotalIssues > 0
	return s
}

func (r *Result) TotalIssues() int {
	return r.Summary().TotalIssues
}

func (r *Result) IsValid() bool {
	return r.TotalIssues() == 0
}

// PlaceholderKeys reduces placeholder mismatches to the offending keys per
// language.
func (r *Result) PlaceholderKeys() map[string][]string {
	return lo.MapValues(r.PlaceholderMismatches, func(ms []KeyMismatch, _ string) []string {
		return lo.Map(ms, func(m KeyMismatch, _ int) string { return m.Key })
	})
}

// Issue kinds reported by Statuses.
const (
	StatusMissing     = "missing"
	StatusExtra       = "extra"
	StatusEmpty       = "empty"
	StatusDuplicate   = "duplicate"
	StatusPlaceholder = "placeholder"
	StatusLanguage    = "language"
)

// Status is one issue of a key in one language.
type Status struct {
	Kind     string `json:"kind"`
	Language string `json:"language"`
}

// Statuses lists the issues of key ordered by language, then kind.
func (r *Result) Statuses(key string) []Status {
	var out []Status
	add := func(kind string, m map[string][]string) {
		for lang, keys := range m {
			if lo.Contains(keys, key) {
				out = append(out, Status{Kind: kind, Language: lang})
			}
		}
	}
	add(StatusMissing, r.MissingKeys)
	add(StatusEmpty, r.EmptyValues)
	add(StatusDuplicate, r.DuplicateKeys)
	add(StatusExtra, r.ExtraKeys)
	add(StatusPlaceholder, r.PlaceholderKeys())
	add(StatusLanguage, lo.MapValues(r.LanguageMismatches, func(ms []LanguageMismatch, _ string) []string {
		return lo.Map(ms, func(m LanguageMismatch, _ int) string { return m.Key })
	}))

	rank := map[string]int{StatusMissing: 0, StatusEmpty: 1, StatusDuplicate: 2, StatusExtra: 3, StatusPlaceholder: 4, StatusLanguage: 5}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return rank[out[i].Kind] < rank[out[j].Kind]
	})
	return out
}

// KeyStatus is the one-line status of key, e.g. "Missing in el; Empty in fr",
// or "OK".
func (r *Result) KeyStatus(key string) string {
	statuses := r.Statuses(key)
	if len(statuses) == 0 {
		return "OK"
	}
	parts := lo.Map(statuses, func(s Status, _ int) string {
		kind := s.Kind
		if kind == StatusPlaceholder {
			kind = "placeholder mismatch"
		} else if kind == StatusLanguage {
			kind = "wrong language"
		}
		return fmt.Sprintf("%s in %s", strings.ToUpper(kind[:1])+kind[1:], s.Language)
	})
	return strings.Join(parts, "; ")
}

// Validator checks resource sets.
type Validator struct {
	placeholders *placeholder.Validator
	language     *detector.Detector
}

type Option func(*Validator)

// WithPlaceholderTypes limits placeholder checks to the given families.
func WithPlaceholderTypes(types placeholder.TypeSet) Option {
	return func(v *Validator) {
		v.placeholders = placeholder.NewValidator(placeholder.NewDetector(placeholder.WithTypeSet(types)))
	}
}

// WithLanguageCheck enables wrong-language detection with det.
func WithLanguageCheck(det *detector.Detector) Option {
	return func(v *Validator) {
		v.language = det
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{placeholders: placeholder.NewValidator(nil)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate compares every translation with the default file. Empty and
// duplicate checks apply to every file including the default.
func (v *Validator) Validate(files []*resource.File) *Result {
	result := newResult()
	def := resource.DefaultFile(files)

	for _, f := range files {
		label := f.Language.Label()
		if dups := duplicateKeys(f); len(dups) > 0 {
			result.DuplicateKeys[label] = dups
		}
		if empty := emptyKeys(f); len(empty) > 0 {
			result.EmptyValues[label] = empty
		}
		if def == nil || f == def {
			continue
		}
		v.compare(result, def, f)
	}

	log.Debugw("validation finished", "files", len(files), "issues", result.TotalIssues())
	return result
}

func (v *Validator) compare(result *Result, def, f *resource.File) {
	label := f.Language.Label()
	defKeys := def.Keys()
	keys := f.Keys()

	if missing := lo.Without(defKeys, keys...); len(missing) > 0 {
		result.MissingKeys[label] = missing
	}
	if extra := lo.Without(keys, defKeys...); len(extra) > 0 {
		result.ExtraKeys[label] = extra
	}

	for _, key := range defKeys {
		src, _ := def.Lookup(key)
		dst, ok := f.Lookup(key)
		if !ok || src.IsEmpty() || dst.IsEmpty() {
			continue
		}
		if r := v.placeholders.Validate(src.Value, dst.Value); !r.IsValid {
			result.PlaceholderMismatches[label] = append(result.PlaceholderMismatches[label], KeyMismatch{Key: key, Result: r})
		}
		if v.language != nil {
			if detected, mismatch := v.language.Check(dst.Value, f.Language.Code); mismatch {
				result.LanguageMismatches[label] = append(result.LanguageMismatches[label], LanguageMismatch{Key: key, Detected: detected})
			}
		}
	}
}

func duplicateKeys(f *resource.File) []string {
	var dups []string
	for _, key := range f.Keys() {
		if f.Occurrences(key) > 1 {
			dups = append(dups, key)
		}
	}
	return dups
}

func emptyKeys(f *resource.File) []string {
	var empty []string
	seen := map[string]bool{}
	for _, e := range f.Entries {
		if e.IsEmpty() && !seen[e.Key] {
			seen[e.Key] = true
			empty = append(empty, e.Key)
		}
	}
	return empty
}
