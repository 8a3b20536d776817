package profiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kcgrab/kcgrab/internal/domain"
)

// File stores one profiles.json per platform under the download base
// directory, keyed by user id.
type File struct {
	baseDir string
	mu      sync.Mutex
}

func NewFile(baseDir string) *File {
	return &File{baseDir: baseDir}
}

var _ Repository = (*File)(nil)

func (f *File) path(pf domain.Platform) string {
	return filepath.Join(f.baseDir, string(pf), "profiles.json")
}

func (f *File) Get(pf domain.Platform, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read(pf)
	if err != nil {
		return nil, err
	}
	profile, ok := all[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (f *File) Put(pf domain.Platform, profile domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read(pf)
	if err != nil {
		return err
	}
	all[profile.ID] = profile

	path := f.path(pf)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(all, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (f *File) read(pf domain.Platform) (map[string]domain.Profile, error) {
	all := make(map[string]domain.Profile)

	data, err := os.ReadFile(f.path(pf))
	if err != nil {
		if os.IsNotExist(err) {
			return all, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	return all, nil
}
