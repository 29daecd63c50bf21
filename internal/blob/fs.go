package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FS stores blobs under a root directory on the local filesystem and
// returns references of the form baseURL/key. Writes go through a
// temporary file plus rename, so a reference never points at a
// partially written file.
type FS struct {
	root    string
	baseURL string
}

// NewFS creates the root directory if needed and returns the store.
func NewFS(root, baseURL string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob fs: create root: %w", err)
	}
	return &FS{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FS) Driver() Driver { return DriverFilesystem }

// Put streams r into root/key and returns the public reference. The key
// is cleaned and kept inside the root; traversal segments are rejected.
func (s *FS) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	clean, err := s.safeKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("blob fs: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob fs: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("blob fs: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("blob fs: close: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("blob fs: rename: %w", err)
	}
	return s.baseURL + "/" + clean, nil
}

// Remove deletes the blob behind a reference previously returned by Put.
func (s *FS) Remove(_ context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.baseURL+"/")
	clean, err := s.safeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *FS) safeKey(key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", fmt.Errorf("blob fs: invalid key %q", key)
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("blob fs: invalid key %q", key)
	}
	return clean, nil
}
