package document

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format loads books of one file format
type Format interface {
	Name() string
	Extensions() []string
	Load(filename string) (*Book, error)
}

var registry []Format

// Register adds a format to the registry
func Register(f Format) {
	registry = append(registry, f)
}

// Open loads a book using the format registered for its extension
func Open(filename string) (*Book, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				book, err := f.Load(filename)
				if err != nil {
					return nil, fmt.Errorf("unable to load %s book %s: %w", f.Name(), filename, err)
				}
				return book, nil
			}
		}
	}
	return nil, fmt.Errorf("unsupported book format %q, supported: %s", ext, strings.Join(SupportedFormats(), ", "))
}

// SupportedFormats returns registered format names with their extensions
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// SupportedExtensions returns every registered file extension
func SupportedExtensions() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Extensions()...)
	}
	return out
}

func titleFromPath(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
