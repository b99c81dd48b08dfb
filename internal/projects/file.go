package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the list as YAML at {dir}/{host}.yaml.
type FileStore struct {
	path string
}

func NewFileStore(dir, gitlabURL string) *FileStore {
	return &FileStore{path: filepath.Join(dir, HostKey(gitlabURL)+".yaml")}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (*List, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project list %s: %w", s.path, err)
	}

	var list List
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode project list %s: %w", s.path, err)
	}
	return &list, nil
}

func (s *FileStore) Save(_ context.Context, list *List) error {
	if list == nil {
		return fmt.Errorf("save project list: nil list")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode project list: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write project list: %w", err)
	}
	return os.Rename(tmp, s.path)
}
