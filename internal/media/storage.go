package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes media files under a directory served at publicBase.
type FileStore struct {
	dir        string
	publicBase string
}

func NewFileStore(dir, publicBase string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &FileStore{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes data to name and returns its public URL. Existing files are
// never overwritten.
func (s *FileStore) Save(name string, data []byte) (string, error) {
	if name != filepath.Base(name) || name == "." || name == "" {
		return "", fmt.Errorf("invalid media file name %q", name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return s.publicBase + "/" + name, nil
}
