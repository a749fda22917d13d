package resource

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// Format reads and writes the entries of one resource file.
type Format interface {
	Name() string
	// Extensions lists the file extensions, with the leading dot, the
	// first one being used for new files.
	Extensions() []string
	Read(r io.Reader) ([]Entry, error)
	Write(w io.Writer, entries []Entry) error
}

var formats = []Format{ResxFormat{}, JSONFormat{}, YAMLFormat{}}

// Formats returns every supported format.
func Formats() []Format {
	return slices.Clone(formats)
}

// FormatByName looks a format up by name ("resx", "json", "yaml").
func FormatByName(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ResxFormat{}, nil
	}
	if name == "yml" {
		name = "yaml"
	}
	for _, f := range formats {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range formats {
		if slices.Contains(f.Extensions(), ext) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

func hasExtension(f Format, name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, ext := range f.Extensions() {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)], true
		}
	}
	return "", false
}
