package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/validator"
)

func sample() []*resource.File {
	return []*resource.File{
		{
			Language: resource.Language{Code: "fr", Name: "Strings.fr.resx"},
			Entries: []resource.Entry{
				{Key: "Menu.Save", Value: "Enregistrer"},
				{Key: "Legacy", Value: "Ancien"},
			},
		},
		{
			Language: resource.Language{IsDefault: true, Name: "Strings.resx"},
			Entries: []resource.Entry{
				{Key: "Menu.Save", Value: "Save", Comment: "toolbar button"},
				{Key: "Menu.Open", Value: "Open file"},
				{Key: "Error.NotFound", Value: "File {0} not found"},
				{Key: "Error.NotFound", Value: "dup"},
			},
		},
	}
}

func keys(p Page) []string {
	out := make([]string, len(p.Results))
	for i, r := range p.Results {
		out[i] = r.Key
	}
	return out
}

func TestBuildKeyInfos(t *testing.T) {
	files := sample()
	infos := BuildKeyInfos(files, validator.New().Validate(files))
	require.Len(t, infos, 4)

	assert.Equal(t, []string{"Menu.Save", "Menu.Open", "Error.NotFound", "Legacy"},
		[]string{infos[0].Key, infos[1].Key, infos[2].Key, infos[3].Key})
	assert.Equal(t, map[string]string{"default": "Save", "fr": "Enregistrer"}, infos[0].Values)
	assert.Equal(t, "toolbar button", infos[0].Comment)
	assert.Equal(t, 2, infos[2].Occurrences)
	assert.Equal(t, []string{"duplicate", "missing"}, infos[2].Statuses)
	assert.Equal(t, []string{"extra"}, infos[3].Statuses)

	MarkUnused(infos, []string{"Menu.Open"})
	assert.Equal(t, []string{"missing", "unused"}, infos[1].Statuses)
}

func TestFilterKeys(t *testing.T) {
	files := sample()
	infos := BuildKeyInfos(files, validator.New().Validate(files))
	svc := NewService(nil)

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{name: "empty search returns all", c: Criteria{}, want: []string{"Menu.Save", "Menu.Open", "Error.NotFound", "Legacy"}},
		{name: "substring ignores case", c: Criteria{SearchText: "menu"}, want: []string{"Menu.Save", "Menu.Open"}},
		{name: "substring case sensitive", c: Criteria{SearchText: "menu", CaseSensitive: true}, want: []string{}},
		{name: "substring in values", c: Criteria{SearchText: "file", Scope: ScopeValues}, want: []string{"Menu.Open", "Error.NotFound"}},
		{name: "keys scope skips values", c: Criteria{SearchText: "file", Scope: ScopeKeys}, want: []string{}},
		{name: "target language", c: Criteria{SearchText: "ancien", Scope: ScopeValues, TargetLanguage: "FR"}, want: []string{"Legacy"}},
		{name: "target language excludes others", c: Criteria{SearchText: "save", Scope: ScopeValues, TargetLanguage: "fr"}, want: []string{}},
		{name: "comments", c: Criteria{SearchText: "toolbar", Scope: ScopeComments}, want: []string{"Menu.Save"}},
		{name: "wildcard", c: Criteria{SearchText: "Menu.*", Mode: ModeWildcard, Scope: ScopeKeys}, want: []string{"Menu.Save", "Menu.Open"}},
		{name: "wildcard anchored", c: Criteria{SearchText: "*Found", Mode: ModeWildcard, Scope: ScopeKeys}, want: []string{"Error.NotFound"}},
		{name: "regex", c: Criteria{SearchText: `^Error\.`, Mode: ModeRegex}, want: []string{"Error.NotFound"}},
		{name: "invalid regex", c: Criteria{SearchText: `([`, Mode: ModeRegex}, want: []string{}},
		{name: "statuses", c: Criteria{Statuses: []string{"extra", "duplicates"}}, want: []string{"Error.NotFound", "Legacy"}},
		{name: "limit and offset", c: Criteria{Limit: 2, Offset: 1}, want: []string{"Menu.Open", "Error.NotFound"}},
		{name: "offset past end", c: Criteria{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := svc.FilterKeys(infos, tt.c)
			assert.Equal(t, tt.want, keys(p))
			assert.Equal(t, 4, p.TotalCount)
		})
	}
}

func TestFilterKeys_Counts(t *testing.T) {
	files := sample()
	p := NewService(nil).FilterKeys(BuildKeyInfos(files, nil), Criteria{SearchText: "Menu", Limit: 1})
	assert.Equal(t, 2, p.FilteredCount)
	assert.Len(t, p.Results, 1)
	assert.Equal(t, ModeSubstring, p.AppliedMode)
}

func TestPatternCache(t *testing.T) {
	c := NewPatternCache(2)
	a, err := c.Get(ModeRegex, "a+", false)
	require.NoError(t, err)
	again, err := c.Get(ModeRegex, "a+", false)
	require.NoError(t, err)
	assert.Same(t, a, again)

	sensitive, err := c.Get(ModeRegex, "a+", true)
	require.NoError(t, err)
	assert.NotSame(t, a, sensitive)

	_, err = c.Get(ModeWildcard, "a*", false)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ModeRegex, "(", false)
	assert.Error(t, err)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNewPatternCache_NonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		var c *PatternCache
		require.NotPanics(t, func() { c = NewPatternCache(size) })
		_, err := c.Get(ModeRegex, "a+", false)
		require.NoError(t, err)
		assert.Equal(t, 1, c.Len())
	}
}

func TestIsWildcardPattern(t *testing.T) {
	assert.True(t, IsWildcardPattern("Err*"))
	assert.True(t, IsWildcardPattern("a?c"))
	assert.False(t, IsWildcardPattern(`literal\*`))
	assert.False(t, IsWildcardPattern("plain"))
}

func TestWildcardToRegex(t *testing.T) {
	assert.Equal(t, `^Menu\..*$`, WildcardToRegex("Menu.*"))
	assert.Equal(t, `^a.c$`, WildcardToRegex("a?c"))
	assert.Equal(t, `^100\*$`, WildcardToRegex(`100\*`))
	assert.Equal(t, `^a\\b$`, WildcardToRegex(`a\b`))
}

func TestParseCultureCodes(t *testing.T) {
	assert.Equal(t, []string{"en", "fr", "el"}, ParseCultureCodes("en, FR el,,fr"))
	assert.Empty(t, ParseCultureCodes("  "))
}

func TestParseModeAndScope(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSubstring, m)
	_, err = ParseMode("fuzzy")
	assert.ErrorIs(t, err, ErrInvalidMode)

	s, err := ParseScope("comments")
	require.NoError(t, err)
	assert.Equal(t, ScopeComments, s)
	_, err = ParseScope("everything")
	assert.ErrorIs(t, err, ErrInvalidScope)
}
