package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var cultureCodePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,4}){0,2}$`)

// IsValidCultureCode reports whether code is a well-formed and known
// language tag such as "fr", "en-US" or "zh-Hans".
func IsValidCultureCode(code string) bool {
	if !cultureCodePattern.MatchString(code) {
		return false
	}
	_, err := language.Parse(code)
	return err == nil
}

// DisplayName returns the English name of a culture code. Unknown codes
// are returned as is.
func DisplayName(code string) string {
	if code == "" || strings.EqualFold(code, "default") {
		return "Default"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// Discovery finds the language files of a resource set: Base.ext is the
// default language, Base.<culture>.ext a translation.
type Discovery struct {
	format Format
}

func NewDiscovery(format Format) *Discovery {
	if format == nil {
		format = ResxFormat{}
	}
	return &Discovery{format: format}
}

// DiscoverLanguages lists the language files directly inside dir, ordered by
// base name, then default first, then by code.
func (d *Discovery) DiscoverLanguages(dir string) ([]Language, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	langs := []Language{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		stem, ok := hasExtension(d.format, e.Name())
		if !ok || stem == "" {
			continue
		}
		langs = append(langs, parseLanguageFileName(dir, e.Name(), stem))
	}

	sort.SliceStable(langs, func(i, j int) bool {
		a, b := langs[i], langs[j]
		if a.BaseName != b.BaseName {
			return a.BaseName < b.BaseName
		}
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		return a.Code < b.Code
	})
	return langs, nil
}

func parseLanguageFileName(dir, name, stem string) Language {
	lang := Language{
		BaseName:  stem,
		Name:      name,
		IsDefault: true,
		FilePath:  filepath.Join(dir, name),
	}
	if i := strings.LastIndex(stem, "."); i > 0 {
		if code := stem[i+1:]; IsValidCultureCode(code) {
			lang.BaseName = stem[:i]
			lang.Code = code
			lang.IsDefault = false
		}
	}
	return lang
}

// ResourceSet is the group of languages sharing a base name.
type ResourceSet struct {
	BaseName  string
	Languages []Language
}

// Default returns the default language of the set.
func (s ResourceSet) Default() (Language, bool) {
	for _, l := range s.Languages {
		if l.IsDefault {
			return l, true
		}
	}
	return Language{}, false
}

// GroupByBaseName groups discovered languages, keeping their order.
func GroupByBaseName(langs []Language) []ResourceSet {
	var sets []ResourceSet
	index := map[string]int{}
	for _, l := range langs {
		i, ok := index[l.BaseName]
		if !ok {
			i = len(sets)
			index[l.BaseName] = i
			sets = append(sets, ResourceSet{BaseName: l.BaseName})
		}
		sets[i].Languages = append(sets[i].Languages, l)
	}
	return sets
}

// LanguageFileName builds the file name of a language in a set.
func LanguageFileName(format Format, baseName, code string) string {
	ext := format.Extensions()[0]
	if code == "" {
		return baseName + ext
	}
	return baseName + "." + code + ext
}
