// Package backup keeps timestamped copies of resource files in a .backups
// directory next to them.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("lrm/backup")

const (
	DirName           = ".backups"
	DefaultMaxBackups = 10
	timestampLayout   = "20060102_150405"
)

var ErrNotFound = errors.New("backup: file not found")

// Manager creates, lists and restores backups.
type Manager struct {
	MaxBackups int
	Now        func() time.Time
}

func NewManager() *Manager {
	return &Manager{MaxBackups: DefaultMaxBackups, Now: time.Now}
}

// Backup is one stored copy.
type Backup struct {
	Path      string    `json:"path"`
	Original  string    `json:"original"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
}

// Dir returns the backup directory used for files in resourceDir.
func Dir(resourceDir string) string {
	return filepath.Join(resourceDir, DirName)
}

// CreateBackup copies path into the backup directory as
// name.yyyyMMdd_HHmmss.ext and prunes older copies beyond MaxBackups.
func (m *Manager) CreateBackup(path string) (string, error) {
	src, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := Dir(filepath.Dir(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stem, ext := splitName(filepath.Base(path))
	stamp := m.now().Format(timestampLayout)
	target := filepath.Join(dir, stem+"."+stamp+ext)
	for n := 1; fileExists(target); n++ {
		target = filepath.Join(dir, fmt.Sprintf("%s.%s_%d%s", stem, stamp, n, ext))
	}

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	if err := m.prune(path); err != nil {
		log.Warnw("failed to prune old backups", "path", path, "err", err)
	}
	log.Debugw("backup created", "path", path, "backup", target)
	return target, nil
}

// CreateBackups backs up every path and returns original -> backup.
func (m *Manager) CreateBackups(paths []string) (map[string]string, error) {
	created := make(map[string]string, len(paths))
	var result *multierror.Error
	for _, p := range paths {
		b, err := m.CreateBackup(p)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to back up %s: %w", p, err))
			continue
		}
		created[p] = b
	}
	return created, result.ErrorOrNil()
}

// ListBackups returns the backups of path, newest first.
func (m *Manager) ListBackups(path string) ([]Backup, error) {
	dir := Dir(filepath.Dir(path))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Backup{}, nil
	}
	if err != nil {
		return nil, err
	}

	stem, ext := splitName(filepath.Base(path))
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `\.(\d{8}_\d{6})(?:_(\d+))?` + regexp.QuoteMeta(ext) + `$`)

	type ranked struct {
		Backup
		seq int
	}
	var found []ranked
	for _, e := range entries {
		sub := pattern.FindStringSubmatch(e.Name())
		if sub == nil {
			continue
		}
		created, err := time.ParseInLocation(timestampLayout, sub[1], time.Local)
		if err != nil {
			continue
		}
		seq := 0
		if sub[2] != "" {
			fmt.Sscanf(sub[2], "%d", &seq)
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		found = append(found, ranked{
			Backup: Backup{Path: filepath.Join(dir, e.Name()), Original: path, CreatedAt: created, Size: size},
			seq:    seq,
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].CreatedAt.After(found[j].CreatedAt)
		}
		return found[i].seq > found[j].seq
	})
	out := make([]Backup, len(found))
	for i, f := range found {
		out[i] = f.Backup
	}
	return out, nil
}

// Restore copies a backup over target after backing up target itself.
func (m *Manager) Restore(backupPath, target string) error {
	data, err := os.ReadFile(backupPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, backupPath)
	}
	if err != nil {
		return err
	}
	if fileExists(target) {
		if _, err := m.CreateBackup(target); err != nil {
			return fmt.Errorf("failed to back up current file: %w", err)
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to restore %s: %w", target, err)
	}
	log.Infow("backup restored", "backup", backupPath, "target", target)
	return nil
}

func (m *Manager) prune(path string) error {
	backups, err := m.ListBackups(path)
	if err != nil {
		return err
	}
	max := m.MaxBackups
	if max <= 0 {
		max = DefaultMaxBackups
	}
	var result *multierror.Error
	for _, b := range backups[min(max, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func splitName(name string) (string, string) {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
