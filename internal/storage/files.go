// Package storage persists uploaded evidence and QC attachment files under
// the configured upload directory. Tickets reference files as comma-joined
// filename lists.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type FileStore struct {
	dir string
}

func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Save persists one multipart upload and returns the stored filename.
// A name collision gets a uuid suffix instead of overwriting.
func (s *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	name := SanitizeFilename(fh.Filename)
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		name = fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
		path = filepath.Join(s.dir, name)
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// SaveAll persists every non-empty upload and returns the stored names.
func (s *FileStore) SaveAll(fhs []*multipart.FileHeader) ([]string, error) {
	var names []string
	for _, fh := range fhs {
		if fh == nil || fh.Filename == "" {
			continue
		}
		name, err := s.Save(fh)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *FileStore) Remove(name string) error {
	path := filepath.Join(s.dir, SanitizeFilename(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename strips path components so uploads cannot escape the dir.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// JoinList renders a filename list to its stored comma-joined form.
func JoinList(names []string) string {
	return strings.Join(names, ",")
}

// SplitList parses a stored comma-joined filename list.
func SplitList(joined string) []string {
	var out []string
	for _, p := range strings.Split(joined, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MergeLists keeps the existing files minus the deleted ones, then appends
// the newly stored names. Mirrors how the follow-up forms edit attachments.
func MergeLists(existing, deleted, added []string) []string {
	drop := make(map[string]bool, len(deleted))
	for _, d := range deleted {
		drop[d] = true
	}
	var out []string
	for _, e := range existing {
		if !drop[e] {
			out = append(out, e)
		}
	}
	return append(out, added...)
}
