package events

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/camview/agent/src/models"
)

// FileStore keeps the bounded event list as a single json document under
// the agent data directory, newest first. This is the stand-alone
// deployment default.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(configDirectory string) (*FileStore, error) {
	directory := filepath.Join(configDirectory, "data", "events")
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, err
	}
	return &FileStore{
		path: filepath.Join(directory, "events.json"),
	}, nil
}

func (f *FileStore) Append(event models.MotionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.load()
	if err != nil {
		return err
	}
	events = append([]models.MotionEvent{event}, events...)
	if len(events) > MaxStoredEvents {
		events = events[:MaxStoredEvents]
	}
	return f.save(events)
}

func (f *FileStore) Update(event models.MotionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.load()
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			return f.save(events)
		}
	}
	// The event might have been dropped by the cap in the meantime.
	return nil
}

func (f *FileStore) ListRecent(limit int) ([]models.MotionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (f *FileStore) load() ([]models.MotionEvent, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.MotionEvent{}, nil
		}
		return nil, err
	}
	var events []models.MotionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (f *FileStore) save(events []models.MotionEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}
