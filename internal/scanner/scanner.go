// Package scanner looks for resource key references in source code and
// reports keys that are never used and keys that are used but not defined.
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"

	"github.com/valpere/lrm/internal/resource"
)

var log = logging.Logger("lrm/scanner")

// Confidence tells how certain a pattern is that it found a key reference.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Confidence) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "high":
		*c = High
	case "medium":
		*c = Medium
	case "low":
		*c = Low
	default:
		return fmt.Errorf("unknown confidence %q", b)
	}
	return nil
}

// DefaultExcludes skips build output and dependency folders.
var DefaultExcludes = []string{"**/bin/**", "**/obj/**", "**/node_modules/**", "**/.git/**"}

// DefaultExtensions are the source files that get scanned.
var DefaultExtensions = []string{".cs", ".cshtml", ".razor", ".xaml", ".ts", ".tsx", ".js", ".jsx", ".vue", ".go", ".py"}

// Pattern finds key references; the first capture group is the key.
type Pattern struct {
	Name       string
	Regexp     *regexp.Regexp
	Confidence Confidence
	// KnownOnly patterns count only when the key exists in resources.
	KnownOnly bool
}

// DefaultPatterns returns the reference patterns for a resource class name,
// usually the base name of the resource set.
func DefaultPatterns(className string) []Pattern {
	classes := []string{"Resources"}
	if className != "" && className != "Resources" {
		classes = append(classes, regexp.QuoteMeta(className))
	}
	class := strings.Join(classes, "|")
	return []Pattern{
		{Name: "Resources.Key", Regexp: regexp.MustCompile(`\b(?:` + class + `)\.([A-Za-z_][A-Za-z0-9_]*)\b`), Confidence: High},
		{Name: "GetString", Regexp: regexp.MustCompile(`\bGetString\(\s*"([^"\n]+)"`), Confidence: High},
		{Name: "Localizer[]", Regexp: regexp.MustCompile(`\b_?[lL]ocalizer\[\s*"([^"\n]+)"\s*\]`), Confidence: High},
		{Name: "x:Static", Regexp: regexp.MustCompile(`\{x:Static\s+\w+:\w+\.([A-Za-z_][A-Za-z0-9_]*)\s*\}`), Confidence: High},
		{Name: "nameof", Regexp: regexp.MustCompile(`\bnameof\(\s*\w+\.([A-Za-z_][A-Za-z0-9_]*)\s*\)`), Confidence: Medium},
		{Name: "T()", Regexp: regexp.MustCompile(`(?:^|[^\w.$])(?:\$t|i18n\.t|T|t|Tr|tr)\(\s*["']([^"'\n]+)["']`), Confidence: Medium},
		{Name: "string literal", Regexp: regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_.]*)"`), Confidence: Low, KnownOnly: true},
	}
}

// Reference is one place a key is used.
type Reference struct {
	File       string     `json:"file"`
	Line       int        `json:"line"`
	Pattern    string     `json:"pattern"`
	Confidence Confidence `json:"confidence"`
}

// KeyUsage lists the references of one key.
type KeyUsage struct {
	Key        string      `json:"key"`
	References []Reference `json:"references"`
}

// Result is the outcome of a scan.
type Result struct {
	FilesScanned    int        `json:"filesScanned"`
	TotalReferences int        `json:"totalReferences"`
	UniqueKeysFound int        `json:"uniqueKeysFound"`
	UnusedKeys      []string   `json:"unusedKeys"`
	MissingKeys     []string   `json:"missingKeys"`
	AllKeyUsages    []KeyUsage `json:"allKeyUsages"`
}

// Usage returns the references of key.
func (r *Result) Usage(key string) (KeyUsage, bool) {
	return lo.Find(r.AllKeyUsages, func(u KeyUsage) bool { return u.Key == key })
}

// Scanner walks a source tree.
type Scanner struct {
	Patterns   []Pattern
	Extensions []string
	excludes   []glob.Glob
}

// New builds a scanner. Nil excludes select DefaultExcludes; nil patterns
// are derived from the default file at scan time.
func New(patterns []Pattern, excludes []string) (*Scanner, error) {
	if excludes == nil {
		excludes = DefaultExcludes
	}
	s := &Scanner{Patterns: patterns, Extensions: DefaultExtensions}
	for _, ex := range excludes {
		g, err := glob.Compile(filepath.ToSlash(ex), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", ex, err)
		}
		s.excludes = append(s.excludes, g)
	}
	return s, nil
}

func (s *Scanner) excluded(rel string, dir bool) bool {
	p := "/" + filepath.ToSlash(rel)
	if dir {
		p += "/"
	}
	for _, g := range s.excludes {
		if g.Match(p) {
			return true
		}
	}
	return false
}

type hit struct {
	file string
	line int
	key  string
}

// Scan walks root and matches references against the keys of defaultFile.
func (s *Scanner) Scan(ctx context.Context, root string, defaultFile *resource.File) (*Result, error) {
	known := map[string]bool{}
	className := ""
	if defaultFile != nil {
		for _, k := range defaultFile.Keys() {
			known[k] = true
		}
		className = defaultFile.Language.BaseName
	}
	patterns := s.Patterns
	if patterns == nil {
		patterns = DefaultPatterns(className)
	}

	result := &Result{}
	usages := map[string][]Reference{}
	best := map[hit]int{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if rel != "." && s.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.excluded(rel, false) || !lo.Contains(s.Extensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		result.FilesScanned++
		return scanFile(path, rel, patterns, known, usages, best)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	keys := lo.Keys(usages)
	sort.Strings(keys)
	var missing []string
	for _, key := range keys {
		refs := usages[key]
		result.TotalReferences += len(refs)
		result.AllKeyUsages = append(result.AllKeyUsages, KeyUsage{Key: key, References: refs})
		if !known[key] && lo.ContainsBy(refs, func(r Reference) bool { return r.Confidence == High }) {
			missing = append(missing, key)
		}
	}
	result.UniqueKeysFound = len(keys)
	result.MissingKeys = lo.Ternary(missing == nil, []string{}, missing)

	result.UnusedKeys = []string{}
	for key := range known {
		if _, used := usages[key]; !used {
			result.UnusedKeys = append(result.UnusedKeys, key)
		}
	}
	sort.Strings(result.UnusedKeys)

	log.Debugw("scan finished", "root", root, "files", result.FilesScanned, "references", result.TotalReferences)
	return result, nil
}

func scanFile(path, rel string, patterns []Pattern, known map[string]bool, usages map[string][]Reference, best map[hit]int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		for _, p := range patterns {
			for _, m := range p.Regexp.FindAllStringSubmatch(text, -1) {
				key := m[1]
				if p.KnownOnly && !known[key] {
					continue
				}
				ref := Reference{File: filepath.ToSlash(rel), Line: line, Pattern: p.Name, Confidence: p.Confidence}
				h := hit{file: ref.File, line: line, key: key}
				if i, seen := best[h]; seen {
					if usages[key][i].Confidence < p.Confidence {
						usages[key][i] = ref
					}
					continue
				}
				best[h] = len(usages[key])
				usages[key] = append(usages[key], ref)
			}
		}
	}
	if err := sc.Err(); err != nil {
		log.Warnw("failed to read source file", "path", path, "err", err)
	}
	return nil
}
