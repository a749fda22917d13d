package resource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("lrm/resource")

// Parser reads and writes language files in one format.
type Parser struct {
	format Format
}

func NewParser(format Format) *Parser {
	if format == nil {
		format = ResxFormat{}
	}
	return &Parser{format: format}
}

func (p *Parser) Format() Format {
	return p.format
}

// Parse reads the file of lang.
func (p *Parser) Parse(lang Language) (*File, error) {
	f, err := os.Open(lang.FilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, lang.FilePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", lang.FilePath, err)
	}
	defer f.Close()

	entries, err := p.format.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", lang.FilePath, err)
	}
	return &File{Language: lang, Entries: entries}, nil
}

// ParseAll parses every language; files that fail are reported together.
func (p *Parser) ParseAll(langs []Language) ([]*File, error) {
	var result *multierror.Error
	files := make([]*File, 0, len(langs))
	for _, lang := range langs {
		file, err := p.Parse(lang)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		files = append(files, file)
	}
	return files, result.ErrorOrNil()
}

// Write stores file at its language path, replacing the previous content
// atomically.
func (p *Parser) Write(file *File) error {
	path := file.Language.FilePath
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := p.format.Write(tmp, file.Entries); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	log.Debugw("resource file written", "path", path, "entries", len(file.Entries))
	return nil
}

// Load discovers and parses the resource set in dir. When dir holds more
// than one base name only the first set is returned.
func Load(dir string, format Format) ([]*File, error) {
	langs, err := NewDiscovery(format).DiscoverLanguages(dir)
	if err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoResources, dir)
	}
	sets := GroupByBaseName(langs)
	if len(sets) > 1 {
		log.Warnw("multiple resource sets found, using the first", "dir", dir, "baseName", sets[0].BaseName)
	}
	return NewParser(format).ParseAll(sets[0].Languages)
}
