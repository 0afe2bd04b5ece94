// Package storage persists uploaded resume files on the local filesystem.
//
// LAYOUT:
// Files live under a single root directory, one subdirectory per user:
//
//	{root}/{userID}/{fileID}{ext}
//
// The per-user prefix mirrors the ownership model of the database: a file
// key always names its owner, and Open/Remove verify the requested key sits
// under the caller's own prefix before touching the disk. Combined with the
// generated file IDs, a user cannot name — let alone reach — anyone else's
// file.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/prep-tracker/internal/apperror"
)

// FileStore is the storage interface the resume service consumes.
type FileStore interface {
	// Save writes r to a new file under userID's prefix and returns its key.
	// ext is the file extension including the dot (".pdf").
	Save(userID, ext string, r io.Reader) (key string, err error)
	// Open returns a reader for the file at key, owned by userID.
	Open(userID, key string) (io.ReadCloser, error)
	// Remove deletes the file at key, owned by userID. Removing a missing
	// file is not an error — the row is the source of truth, not the disk.
	Remove(userID, key string) error
}

// DiskStore implements FileStore on a local directory.
type DiskStore struct {
	root string
}

var _ FileStore = (*DiskStore)(nil)

// NewDiskStore creates the root directory if needed and returns a store.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

// Save streams r into a freshly named file under the user's directory.
// The key embeds a generated xid, so keys never collide and never contain
// client-controlled path segments.
func (s *DiskStore) Save(userID, ext string, r io.Reader) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("storage: userID must not be empty")
	}
	// Extension comes from the upload's filename — keep only a sane suffix.
	ext = sanitizeExt(ext)

	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: creating user dir: %w", err)
	}

	key := userID + "/" + xid.New().String() + ext
	f, err := os.Create(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("storage: creating file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("storage: writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: closing file: %w", err)
	}

	return key, nil
}

// Open returns the file at key after verifying ownership.
func (s *DiskStore) Open(userID, key string) (io.ReadCloser, error) {
	path, err := s.resolve(userID, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound("file", key)
		}
		return nil, fmt.Errorf("storage: opening file: %w", err)
	}
	return f, nil
}

// Remove deletes the file at key after verifying ownership.
func (s *DiskStore) Remove(userID, key string) error {
	path, err := s.resolve(userID, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing file: %w", err)
	}
	return nil
}

// resolve validates that key belongs to userID and maps it to a real path.
//
// TWO CHECKS, BOTH REQUIRED:
//  1. Prefix check — the key must start with "{userID}/". This is the
//     ownership guard.
//  2. Traversal check — after filepath cleaning, the absolute path must
//     still sit under the store root. This kills "userID/../../etc/passwd"
//     style keys even if a corrupted key reaches the database.
func (s *DiskStore) resolve(userID, key string) (string, error) {
	if userID == "" || key == "" {
		return "", apperror.NotFound("file", key)
	}
	if !strings.HasPrefix(key, userID+"/") {
		return "", apperror.NotFound("file", key)
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))

	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("storage: resolving root: %w", err)
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("storage: resolving path: %w", err)
	}
	if !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", apperror.NotFound("file", key)
	}

	return pathAbs, nil
}

// sanitizeExt keeps extensions boring: lowercase, one dot, short,
// alphanumeric. Anything else is dropped entirely.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || !strings.HasPrefix(ext, ".") || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
