// Package journal keeps a record of the input events the agent has acted upon.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

const DefaultFileName = "journal.json"

type Journal struct {
	mu       sync.Mutex
	events   []model.InputEvent
	filePath string
	// limit of retained events, oldest are evicted first. 0 means unbounded
	limit int
}

// New journal persisted at filePath. Existing content is loaded, a missing file
// is fine.
func New(filePath string, limit int) (*Journal, error) {
	if filePath == "" {
		return nil, errors.New("journal file path must be set")
	}
	if limit < 0 {
		return nil, fmt.Errorf("journal limit must not be negative, got: %v", limit)
	}
	j := &Journal{
		filePath: filePath,
		events:   []model.InputEvent{},
		limit:    limit,
	}

	err := j.load()
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	ancli.Okf("journal setup at: '%v', loaded: '%v' events", filePath, len(j.Get()))
	return j, nil
}

// DefaultPath in the user cache dir.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "avatarweb", DefaultFileName), nil
}

// Add events and persist the journal.
func (j *Journal) Add(events ...model.InputEvent) error {
	if len(events) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, events...)
	j.trim()
	return j.save()
}

// trim to the limit, keeping the most recent events.
func (j *Journal) trim() {
	if j.limit > 0 && len(j.events) > j.limit {
		j.events = append([]model.InputEvent(nil), j.events[len(j.events)-j.limit:]...)
	}
}

func (j *Journal) Get() []model.InputEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	// Return a copy to avoid data races if the caller modifies it
	res := make([]model.InputEvent, len(j.events))
	copy(res, j.events)
	return res
}

func (j *Journal) load() error {
	data, err := os.ReadFile(j.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &j.events); err != nil {
		return err
	}
	j.trim()
	return nil
}

func (j *Journal) save() error {
	data, err := json.Marshal(j.events)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create journal dir: %w", err)
	}
	return os.WriteFile(j.filePath, data, 0o644)
}
