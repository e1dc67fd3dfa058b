package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const PublicPrefix = "/uploads/"

// LocalStore keeps uploads under root on the given filesystem and serves them
// below PublicPrefix.
type LocalStore struct {
	fs   afero.Fs
	root string
}

func NewLocalStore(fsys afero.Fs, root string) *LocalStore {
	return &LocalStore{fs: fsys, root: root}
}

func (s *LocalStore) Put(ctx context.Context, data []byte, folder, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	rel := path.Join(folder, uuid.NewString()+strings.ToLower(ext))

	if err := s.fs.MkdirAll(path.Join(s.root, folder), 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}
	if err := afero.WriteFile(s.fs, path.Join(s.root, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return rel, nil
}

func (s *LocalStore) PublicURL(relativePath string) string {
	return PublicPrefix + strings.TrimLeft(strings.ReplaceAll(relativePath, "\\", "/"), "/")
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	rel := RelativePath(ref)
	if rel == "" {
		return nil
	}
	if err := s.fs.Remove(path.Join(s.root, rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}
	return nil
}

// RelativePath turns a stored reference (absolute URL, /uploads/ path or bare
// relative path) into a path relative to the upload root. References that
// escape the root resolve to "".
func RelativePath(ref string) string {
	if ref == "" {
		return ""
	}
	normalized := strings.ReplaceAll(ref, "\\", "/")
	if u, err := url.Parse(normalized); err == nil && u.Scheme != "" && u.Host != "" {
		normalized = u.Path
	}

	switch {
	case strings.HasPrefix(normalized, PublicPrefix):
		normalized = strings.TrimPrefix(normalized, PublicPrefix)
	case strings.HasPrefix(normalized, "uploads/"):
		normalized = strings.TrimPrefix(normalized, "uploads/")
	}
	normalized = strings.TrimLeft(normalized, "/")

	cleaned := path.Clean(normalized)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}
