// Package filter searches the keys of a resource set by key, value or
// comment, using substring, wildcard or regular expression matching.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/validator"
)

const (
	DefaultCacheSize = 128
	regexTimeout     = 2 * time.Second
)

// Mode selects how SearchText is matched.
type Mode string

const (
	ModeSubstring Mode = "substring"
	ModeWildcard  Mode = "wildcard"
	ModeRegex     Mode = "regex"
)

// Scope selects which parts of a key are searched.
type Scope string

const (
	ScopeKeys          Scope = "keys"
	ScopeValues        Scope = "values"
	ScopeKeysAndValues Scope = "keysAndValues"
	ScopeComments      Scope = "comments"
	ScopeAll           Scope = "all"
)

// StatusUnused marks keys no source file references.
const StatusUnused = "unused"

var (
	ErrInvalidMode  = errors.New("filter: mode must be 'substring', 'wildcard', or 'regex'")
	ErrInvalidScope = errors.New("filter: scope must be 'keys', 'values', 'keysAndValues', 'comments', or 'all'")
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeSubstring, nil
	case ModeSubstring, ModeWildcard, ModeRegex:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func ParseScope(s string) (Scope, error) {
	switch sc := Scope(s); sc {
	case "":
		return ScopeKeysAndValues, nil
	case ScopeKeys, ScopeValues, ScopeKeysAndValues, ScopeComments, ScopeAll:
		return sc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
}

func (s Scope) keys() bool {
	return s == ScopeKeys || s == ScopeKeysAndValues || s == ScopeAll
}

func (s Scope) values() bool {
	return s == ScopeValues || s == ScopeKeysAndValues || s == ScopeAll
}

func (s Scope) comments() bool {
	return s == ScopeComments || s == ScopeAll
}

// ResourceKeyInfo is one key with its values in every language.
type ResourceKeyInfo struct {
	Key         string            `json:"key"`
	Values      map[string]string `json:"values"`
	Comment     string            `json:"comment,omitempty"`
	Occurrences int               `json:"occurrences"`
	Statuses    []string          `json:"statuses,omitempty"`
}

// BuildKeyInfos lists the keys of files: default keys first, then keys
// found only in translations. Values are keyed by language label. A
// non-nil result fills Statuses.
func BuildKeyInfos(files []*resource.File, result *validator.Result) []ResourceKeyInfo {
	var order []string
	infos := map[string]*ResourceKeyInfo{}

	sorted := append([]*resource.File{}, files...)
	if def := resource.DefaultFile(files); def != nil {
		sorted = append([]*resource.File{def}, lo.Without(sorted, def)...)
	}
	for _, f := range sorted {
		label := f.Language.Label()
		for _, key := range f.Keys() {
			info, ok := infos[key]
			if !ok {
				info = &ResourceKeyInfo{Key: key, Values: map[string]string{}}
				infos[key] = info
				order = append(order, key)
			}
			e, _ := f.Lookup(key)
			info.Values[label] = e.Value
			if info.Comment == "" {
				info.Comment = e.Comment
			}
			info.Occurrences = max(info.Occurrences, f.Occurrences(key))
		}
	}

	out := make([]ResourceKeyInfo, 0, len(order))
	for _, key := range order {
		info := infos[key]
		if result != nil {
			info.Statuses = lo.Uniq(lo.Map(result.Statuses(key), func(s validator.Status, _ int) string { return s.Kind }))
		}
		out = append(out, *info)
	}
	return out
}

// MarkUnused adds the unused status to the given keys.
func MarkUnused(infos []ResourceKeyInfo, unused []string) {
	for i := range infos {
		if lo.Contains(unused, infos[i].Key) && !lo.Contains(infos[i].Statuses, StatusUnused) {
			infos[i].Statuses = append(infos[i].Statuses, StatusUnused)
		}
	}
}

// Criteria describes a search. Statuses keep keys having any of the given
// statuses. Limit 0 means no limit.
type Criteria struct {
	SearchText     string   `json:"pattern"`
	Mode           Mode     `json:"filterMode"`
	CaseSensitive  bool     `json:"caseSensitive"`
	Scope          Scope    `json:"searchScope"`
	TargetLanguage string   `json:"targetLanguage,omitempty"`
	Statuses       []string `json:"statusFilters,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}

// Page is one window of filter results.
type Page struct {
	Results       []ResourceKeyInfo `json:"results"`
	TotalCount    int               `json:"totalCount"`
	FilteredCount int               `json:"filteredCount"`
	AppliedMode   Mode              `json:"appliedFilterMode"`
}

type cacheKey struct {
	mode          Mode
	pattern       string
	caseSensitive bool
}

// PatternCache holds compiled search patterns. It is owned by the caller
// and bounded in size.
type PatternCache struct {
	lru *lru.Cache[cacheKey, *regexp2.Regexp]
}

func NewPatternCache(size int) *PatternCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size.
	c, err := lru.New[cacheKey, *regexp2.Regexp](size)
	if err != nil {
		panic(err)
	}
	return &PatternCache{lru: c}
}

// Get compiles or returns the cached regular expression for a wildcard or
// regex search.
func (c *PatternCache) Get(mode Mode, pattern string, caseSensitive bool) (*regexp2.Regexp, error) {
	k := cacheKey{mode: mode, pattern: pattern, caseSensitive: caseSensitive}
	if re, ok := c.lru.Get(k); ok {
		return re, nil
	}

	expr := pattern
	if mode == ModeWildcard {
		expr = WildcardToRegex(pattern)
	}
	opts := regexp2.None
	if !caseSensitive {
		opts = regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = regexTimeout
	c.lru.Add(k, re)
	return re, nil
}

func (c *PatternCache) Len() int {
	return c.lru.Len()
}

func (c *PatternCache) Clear() {
	c.lru.Purge()
}

// Service filters key lists.
type Service struct {
	cache *PatternCache
}

// NewService uses cache for compiled patterns; nil creates a private one.
func NewService(cache *PatternCache) *Service {
	if cache == nil {
		cache = NewPatternCache(DefaultCacheSize)
	}
	return &Service{cache: cache}
}

// FilterKeys applies criteria to keys. An invalid regular expression yields
// an empty page rather than an error.
func (s *Service) FilterKeys(keys []ResourceKeyInfo, c Criteria) Page {
	mode := c.Mode
	if mode == "" {
		mode = ModeSubstring
	}
	scope := c.Scope
	if scope == "" {
		scope = ScopeKeysAndValues
	}
	page := Page{TotalCount: len(keys), AppliedMode: mode, Results: []ResourceKeyInfo{}}

	match := func(string) bool { return true }
	if strings.TrimSpace(c.SearchText) != "" {
		switch mode {
		case ModeSubstring:
			needle := c.SearchText
			if !c.CaseSensitive {
				needle = strings.ToLower(needle)
			}
			match = func(v string) bool {
				if !c.CaseSensitive {
					v = strings.ToLower(v)
				}
				return strings.Contains(v, needle)
			}
		default:
			re, err := s.cache.Get(mode, c.SearchText, c.CaseSensitive)
			if err != nil {
				return page
			}
			match = func(v string) bool {
				ok, err := re.MatchString(v)
				return err == nil && ok
			}
		}
	}

	filtered := lo.Filter(keys, func(k ResourceKeyInfo, _ int) bool {
		if len(c.Statuses) > 0 && !hasAnyStatus(k, c.Statuses) {
			return false
		}
		if strings.TrimSpace(c.SearchText) == "" {
			return true
		}
		return matchesKey(k, scope, c.TargetLanguage, match)
	})
	page.FilteredCount = len(filtered)

	offset := min(max(c.Offset, 0), len(filtered))
	end := len(filtered)
	if c.Limit > 0 {
		end = min(offset+c.Limit, end)
	}
	page.Results = append(page.Results, filtered[offset:end]...)
	return page
}

func matchesKey(k ResourceKeyInfo, scope Scope, target string, match func(string) bool) bool {
	if scope.keys() && match(k.Key) {
		return true
	}
	if scope.values() {
		for lang, v := range k.Values {
			if target != "" && !strings.EqualFold(lang, target) {
				continue
			}
			if match(v) {
				return true
			}
		}
	}
	return scope.comments() && k.Comment != "" && match(k.Comment)
}

func hasAnyStatus(k ResourceKeyInfo, statuses []string) bool {
	for _, s := range statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "duplicates" {
			s = validator.StatusDuplicate
		}
		if lo.Contains(k.Statuses, s) {
			return true
		}
	}
	return false
}

// IsWildcardPattern reports whether pattern has an unescaped * or ?.
func IsWildcardPattern(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*', '?':
			return true
		}
	}
	return false
}

// WildcardToRegex converts * and ? to an anchored regular expression.
// \* and \? stay literal.
func WildcardToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && (runes[i+1] == '*' || runes[i+1] == '?'):
			b.WriteByte('\\')
			b.WriteRune(runes[i+1])
			i++
		case r == '*':
			b.WriteString(".*")
		case r == '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

// ParseCultureCodes splits a list such as "en, FR el" into distinct lower
// case codes.
func ParseCultureCodes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	return lo.Uniq(lo.Map(fields, func(f string, _ int) string { return strings.ToLower(f) }))
}
