package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// RefPrefix starts every generated reference.
const RefPrefix = "IMAGE-"

// LocalFS keeps blobs as flat files in one directory, named IMAGE-<uuid><ext>.
type LocalFS struct {
	root string
}

var _ Store = (*LocalFS)(nil)

// NewLocalFS creates the store rooted at root, creating the directory if needed.
// PRE: root is non-empty
// POST: root exists and is writable by the process
func NewLocalFS(root string) (*LocalFS, error) {
	if root == "" {
		return nil, errors.New("blob: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &LocalFS{root: root}, nil
}

// Root returns the directory blobs are written to.
func (l *LocalFS) Root() string {
	return l.root
}

// NewRef generates a reference keeping the lower-cased extension of name.
func NewRef(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if !validExt(ext) {
		ext = ""
	}
	return RefPrefix + uuid.NewString() + ext
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ValidRef reports whether ref could have been produced by NewRef.
// References are used as file names, so anything with a separator is rejected.
func ValidRef(ref string) bool {
	if !strings.HasPrefix(ref, RefPrefix) {
		return false
	}
	if strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return false
	}
	rest := strings.TrimPrefix(ref, RefPrefix)
	ext := filepath.Ext(rest)
	if ext != "" && !validExt(ext) {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(rest, ext))
	return err == nil
}

// Put writes data under a fresh reference.
// PRE: data is non-empty
// POST: File exists with exactly data; a partially written file is removed
func (l *LocalFS) Put(ctx context.Context, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := NewRef(name)
	path := filepath.Join(l.root, ref)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return ref, nil
}

// Get reads the bytes stored under ref.
func (l *LocalFS) Get(ctx context.Context, ref string) ([]byte, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(l.root, ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Delete removes the file stored under ref.
func (l *LocalFS) Delete(ctx context.Context, ref string) error {
	if !ValidRef(ref) {
		return ErrInvalidRef
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(l.root, ref))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
