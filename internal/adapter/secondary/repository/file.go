package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"volnudge/internal/domain"
)

// FileRepository implements domain.ConfigRepository using JSON files.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a new file-based config repository.
func NewFileRepository(path string) (domain.ConfigRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	return &FileRepository{path: path}, nil
}

// persistedData represents the JSON structure on disk.
type persistedData struct {
	Step   float64         `json:"step"`
	Remote persistedRemote `json:"remote"`
}

type persistedRemote struct {
	Addr             string `json:"addr"`
	Password         string `json:"password,omitempty"`
	HeartbeatSeconds int    `json:"heartbeatSeconds"`
	RateLimit        int    `json:"rateLimit"`
	AllowPower       bool   `json:"allowPower,omitempty"`
}

// Load reads the configuration from disk, filling unset fields with defaults.
func (f *FileRepository) Load() (domain.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	var persisted persistedData
	if err := json.Unmarshal(data, &persisted); err != nil {
		return domain.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply defaults if necessary
	config := domain.DefaultConfig()
	if persisted.Step > 0 {
		config.Step = persisted.Step
	}
	if persisted.Remote.Addr != "" {
		config.Remote.Addr = persisted.Remote.Addr
	}
	config.Remote.Password = persisted.Remote.Password
	if persisted.Remote.HeartbeatSeconds > 0 {
		config.Remote.Heartbeat = time.Duration(persisted.Remote.HeartbeatSeconds) * time.Second
	}
	if persisted.Remote.RateLimit > 0 {
		config.Remote.RateLimit = persisted.Remote.RateLimit
	}
	config.Remote.AllowPower = persisted.Remote.AllowPower

	return config, nil
}

// Save persists the configuration to disk.
func (f *FileRepository) Save(config domain.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	persisted := persistedData{
		Step: config.Step,
		Remote: persistedRemote{
			Addr:             config.Remote.Addr,
			Password:         config.Remote.Password,
			HeartbeatSeconds: int(config.Remote.Heartbeat / time.Second),
			RateLimit:        config.Remote.RateLimit,
			AllowPower:       config.Remote.AllowPower,
		},
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Atomic write; the file may hold the remote password.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}

	return nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "volnudge", "config.json")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "volnudge-config.json")
}
