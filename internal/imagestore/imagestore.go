// Package imagestore stores uploaded product images as files in a single
// directory.
package imagestore

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Store writes uploads into dir. Stored names are the sanitized original
// base name prefixed with a nanosecond timestamp, so two uploads of the
// same file never collide.
type Store struct {
	dir string
	now func() time.Time
}

// New creates the upload directory if needed and returns a Store for it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &Store{
		dir: dir,
		now: time.Now,
	}, nil
}

// Save writes content to a new file and returns the stored name to keep as
// the product's image reference.
func (s *Store) Save(filename string, content io.Reader) (string, error) {
	stored := fmt.Sprintf("%d_%s", s.now().UnixNano(), sanitize(filename))

	f, err := os.OpenFile(filepath.Join(s.dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", stored)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", errors.Wrapf(err, "write %s", stored)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", stored)
	}

	return stored, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "remove %s", name)
	}
	return nil
}

// Dir returns the directory stored files live in, for serving them over HTTP.
func (s *Store) Dir() string {
	return s.dir
}

// sanitize reduces an upload filename to a safe base name: path components
// are stripped and anything outside [a-zA-Z0-9._-] becomes an underscore.
func sanitize(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "upload"
	}
	return name
}
