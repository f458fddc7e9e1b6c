// Package uploads owns profile-image intake: validation, collision-free
// naming, disk storage and the public serving path.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const sniffLen = 512 // bytes handed to http.DetectContentType

var (
	ErrUnsupportedType = errors.New("only JPEG, JPG, and PNG images are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Store saves validated uploads under a single directory. Records hold the
// bare generated filename; PublicPath resolves it for clients at read time.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the storage root, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and persists one uploaded file, returning the generated
// filename. Nothing reaches disk unless the extension, the sniffed content
// type and the size ceiling all pass; a failed write removes the partial
// file so an aborted upload cannot leave a half-written orphan behind.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	if !allowedContentTypes[contentType] {
		return "", ErrUnsupportedType
	}

	name := s.generateName(ext)
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := dst.Write(head[:n]); err == nil {
		_, err = io.Copy(dst, io.LimitReader(src, s.maxSize))
	}
	if err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by name. A missing file is not an error;
// callers treat removal as best-effort cleanup.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Stored references are bare filenames; reject anything path-like.
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid stored filename %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicPath rewrites a stored filename into the path the HTTP layer
// serves it from. Empty stays empty.
func (s *Store) PublicPath(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}

// Sweep removes files older than minAge that inUse does not reference.
// Crashed requests can leave saved files no record points at; the cron
// sweeper calls this periodically. Individual removal failures are
// skipped, not fatal.
func (s *Store) Sweep(minAge time.Duration, inUse map[string]bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := time.Now().Add(-minAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || inUse[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// generateName produces a collision-free filename: timestamp plus a random
// suffix plus the original extension.
func (s *Store) generateName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("profile-%d-%s%s", time.Now().UnixNano(), suffix, ext)
}
