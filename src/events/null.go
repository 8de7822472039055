package events

import "github.com/camview/agent/src/models"

// NullStore drops everything. It is the fallback when no real store can be
// created, so the detector keeps running with persistence disabled.
type NullStore struct{}

func NewNullStore() *NullStore {
	return &NullStore{}
}

func (n *NullStore) Append(event models.MotionEvent) error {
	return nil
}

func (n *NullStore) Update(event models.MotionEvent) error {
	return nil
}

func (n *NullStore) ListRecent(limit int) ([]models.MotionEvent, error) {
	return []models.MotionEvent{}, nil
}
