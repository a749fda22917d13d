package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

func TestCreateBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Strings.fr.resx")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	m := &Manager{MaxBackups: 10, Now: clock(time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local))}
	b, err := m.CreateBackup(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".backups", "Strings.fr.20250304_050607.resx"), b)

	data, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestCreateBackup_SameSecond(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "S.resx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	m := &Manager{MaxBackups: 10, Now: func() time.Time { return fixed }}
	first, err := m.CreateBackup(path)
	require.NoError(t, err)
	second, err := m.CreateBackup(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	list, err := m.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].Path)
}

func TestCreateBackup_Prunes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Strings.resx")
	other := filepath.Join(dir, "Strings.el.resx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("y"), 0o644))

	m := &Manager{MaxBackups: 3, Now: clock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))}
	var last string
	for i := 0; i < 5; i++ {
		b, err := m.CreateBackup(path)
		require.NoError(t, err)
		last = b
	}
	_, err := m.CreateBackup(other)
	require.NoError(t, err)

	list, err := m.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, last, list[0].Path)
	assert.True(t, list[0].CreatedAt.After(list[2].CreatedAt))

	elList, err := m.ListBackups(other)
	require.NoError(t, err)
	assert.Len(t, elList, 1)
}

func TestCreateBackups(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(a, []byte("{}"), 0o644))

	created, err := NewManager().CreateBackups([]string{a, filepath.Join(dir, "missing.json")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, created, a)
	assert.Len(t, created, 1)
}

func TestListBackups_NoDirectory(t *testing.T) {
	list, err := NewManager().ListBackups(filepath.Join(t.TempDir(), "x.resx"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "S.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	m := &Manager{MaxBackups: 10, Now: clock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))}
	b, err := m.CreateBackup(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("new"), 0o644))

	require.NoError(t, m.Restore(b, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	list, err := m.ListBackups(path)
	require.NoError(t, err)
	assert.Len(t, list, 2, "restoring backs up the replaced content")

	assert.ErrorIs(t, m.Restore(filepath.Join(dir, "nope"), path), ErrNotFound)
}

func TestDir(t *testing.T) {
	assert.Equal(t, filepath.Join("res", ".backups"), Dir("res"))
}
