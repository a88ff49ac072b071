package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded files and returns a URL the file is served under.
// Remove takes that URL back, so callers can undo a Save whose follow-up
// work failed.
type Store interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(url string) error
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// LocalStore writes uploads to a directory on local disk. Files are renamed
// to a UUID so a client-supplied name can never traverse out of the root.
type LocalStore struct {
	root     string
	baseURL  string
	maxBytes int64
	logger   *slog.Logger
}

func NewLocalStore(root, baseURL string, maxMB int, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxMB <= 0 {
		maxMB = 10
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: int64(maxMB) << 20,
		logger:   logger,
	}, nil
}

// Save stores the file and returns its public URL
func (s *LocalStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.root, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("file exceeds %d byte limit", s.maxBytes)
	}

	s.logger.Debug("stored upload",
		slog.String("file", name),
		slog.Int64("bytes", written),
	)
	return s.baseURL + "/" + name, nil
}

// Remove deletes a previously saved file by its URL. Only the final path
// segment is used, so the URL cannot reach outside the root. A file that is
// already gone is not an error.
func (s *LocalStore) Remove(url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid upload url %q", url)
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove upload: %w", err)
	}
	s.logger.Debug("removed upload", slog.String("file", name))
	return nil
}
