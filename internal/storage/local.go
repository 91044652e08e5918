package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// Local stores each slot as one JSON file under BaseDir.
type Local struct {
	BaseDir string
}

func NewLocal(baseDir string) *Local {
	return &Local{BaseDir: baseDir}
}

func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Put writes to a temp file and renames it over the slot, so readers never
// observe a half-written payload.
func (l *Local) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(l.BaseDir, ".slot-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, l.path(key)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// path flattens the key into a single file name; PathEscape also escapes "/",
// so keys can never leave BaseDir.
func (l *Local) path(key string) string {
	return filepath.Join(l.BaseDir, url.PathEscape(key)+".json")
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
