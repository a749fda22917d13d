package resource

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFiles() []*File {
	return []*File{
		{Language: Language{BaseName: "R", IsDefault: true}, Entries: []Entry{
			{Key: "A", Value: "a"},
			{Key: "B", Value: "b", Comment: "bee"},
		}},
		{Language: Language{BaseName: "R", Code: "fr"}, Entries: []Entry{
			{Key: "A", Value: "a-fr"},
		}},
	}
}

func TestAddKey(t *testing.T) {
	files := sampleFiles()
	require.NoError(t, AddKey(files, "C", map[string]string{"default": "c", "fr": "c-fr"}, "new"))
	e, ok := files[1].Lookup("C")
	require.True(t, ok)
	assert.Equal(t, Entry{Key: "C", Value: "c-fr", Comment: "new"}, e)

	err := AddKey(files, "A", nil, "")
	assert.ErrorIs(t, err, ErrKeyExists)
}

func TestUpdateKey(t *testing.T) {
	files := sampleFiles()
	changed, err := UpdateKey(files, "B", map[string]string{"fr": "b-fr"}, "")
	require.NoError(t, err)
	require.Len(t, changed, 1)
	e, _ := files[1].Lookup("B")
	assert.Equal(t, "b-fr", e.Value)

	changed, err = UpdateKey(files, "A", nil, "shared note")
	require.NoError(t, err)
	assert.Len(t, changed, 2)
	e, _ = files[0].Lookup("A")
	assert.Equal(t, Entry{Key: "A", Value: "a", Comment: "shared note"}, e)

	_, err = UpdateKey(files, "Z", map[string]string{"fr": "z"}, "")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteKey(t *testing.T) {
	files := sampleFiles()
	n, err := DeleteKey(files, "A", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, files[1].Count())

	_, err = DeleteKey(files, "A", 0)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestDeleteKey_SingleOccurrence(t *testing.T) {
	files := []*File{{Entries: []Entry{{Key: "K", Value: "1"}, {Key: "X"}, {Key: "K", Value: "2"}}}}
	n, err := DeleteKey(files, "K", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []Entry{{Key: "K", Value: "1"}, {Key: "X"}}, files[0].Entries)
}

func TestMergeDuplicates(t *testing.T) {
	newFile := func() *File {
		return &File{Entries: []Entry{
			{Key: "K", Value: ""},
			{Key: "X", Value: "x"},
			{Key: "K", Value: "second"},
			{Key: "K", Value: "third"},
		}}
	}

	f := newFile()
	assert.Equal(t, 2, MergeDuplicates(f, "K", KeepFirst))
	assert.Equal(t, []Entry{{Key: "K"}, {Key: "X", Value: "x"}}, f.Entries)

	f = newFile()
	MergeDuplicates(f, "", KeepLast)
	assert.Equal(t, []Entry{{Key: "K", Value: "third"}, {Key: "X", Value: "x"}}, f.Entries)

	f = newFile()
	MergeDuplicates(f, "K", KeepFirstNonEmpty)
	assert.Equal(t, "second", f.Entries[0].Value)

	f = newFile()
	assert.Equal(t, 0, MergeDuplicates(f, "X", KeepFirst))
	assert.Len(t, f.Entries, 4)
}

func TestNewLanguageFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "R.resx", sampleResx)
	writeFile(t, dir, "R.fr.resx", sampleResx)
	src := sampleFiles()[0]

	file, err := NewLanguageFile(ResxFormat{}, dir, "R", "de", src, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "R.de.resx"), file.Language.FilePath)
	assert.Equal(t, []Entry{{Key: "A"}, {Key: "B", Comment: "bee"}}, file.Entries)

	copied, err := NewLanguageFile(ResxFormat{}, dir, "R", "de", src, true)
	require.NoError(t, err)
	assert.Equal(t, "a", copied.Entries[0].Value)

	_, err = NewLanguageFile(ResxFormat{}, dir, "R", "fr", nil, false)
	assert.ErrorIs(t, err, ErrLanguageExists)

	_, err = NewLanguageFile(ResxFormat{}, dir, "R", "english", nil, false)
	assert.ErrorIs(t, err, ErrInvalidCulture)
}

func TestDeleteLanguageFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "R.fr.resx", sampleResx)

	assert.ErrorIs(t, DeleteLanguageFile(Language{IsDefault: true, FilePath: path}), ErrDefaultLanguage)
	require.NoError(t, DeleteLanguageFile(Language{Code: "fr", FilePath: path}))
	assert.False(t, LanguageFileExists(ResxFormat{}, dir, "R", "fr"))
	assert.ErrorIs(t, DeleteLanguageFile(Language{Code: "fr", FilePath: path}), ErrFileNotFound)
}
