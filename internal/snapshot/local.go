package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type localConfig struct {
	Dir  string `json:"dir"`
	Name string `json:"name"`
}

type localStore struct {
	path string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}) (Store, error) {
	config := &localConfig{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("local snapshot dir is required")
	}
	if config.Name == "" {
		config.Name = "data.json"
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &localStore{path: filepath.Join(config.Dir, config.Name)}, nil
}

func (s *localStore) Load(ctx context.Context) ([]byte, error) {
	_ = ctx
	return os.ReadFile(s.path)
}

// Save writes to a temp file in the same directory and renames it over the
// snapshot, so concurrent readers see either the old or the new corpus,
// never a torn one.
func (s *localStore) Save(ctx context.Context, data []byte) error {
	_ = ctx
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
