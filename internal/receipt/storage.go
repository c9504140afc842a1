package receipt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Storage holds uploads while they are being processed
type Storage interface {
	// Stage copies r into a new file named after filename and returns its path
	Stage(filename string, r io.Reader) (string, error)

	// Read returns the contents of a staged file
	Read(path string) ([]byte, error)

	// Remove deletes a staged file
	Remove(path string) error
}

// LocalStorage stages uploads as temporary files in a directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the staging directory if needed. An empty
// basePath uses the system temp directory.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = os.TempDir()
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Stage copies r into a uniquely named file in the staging directory
func (l *LocalStorage) Stage(filename string, r io.Reader) (string, error) {
	clean := sanitizeFilename(filename)
	ext := filepath.Ext(clean)
	pattern := strings.TrimSuffix(clean, ext) + "-*" + ext

	f, err := os.CreateTemp(l.basePath, pattern)
	if err != nil {
		return "", fmt.Errorf("creating staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing staged file: %w", err)
	}
	return f.Name(), nil
}

// Read returns the contents of a staged file
func (l *LocalStorage) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading staged file: %w", err)
	}
	return data, nil
}

// Remove deletes a staged file
func (l *LocalStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing staged file: %w", err)
	}
	return nil
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	unsafeExt   = regexp.MustCompile(`[^a-zA-Z0-9.]`)
)

// sanitizeFilename keeps a short, filesystem safe version of an uploaded name
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := unsafeExt.ReplaceAllString(filepath.Ext(filename), "")
	if len(ext) > 8 {
		ext = ext[:8]
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = unsafeChars.ReplaceAllString(base, "")

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "upload"
	}
	if ext == "" || ext == "." {
		ext = ".txt"
	}
	return base + ext
}
