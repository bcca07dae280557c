package client

import (
	"encoding/json"
	"log"

	"github.com/quocanhngo/agrosynth/internal/model"
)

// RecentPreviewSize is how many recent alerts the home view shows
const RecentPreviewSize = 5

// RecentCache is a stale snapshot of the last alert list seen on this device.
// It is only a preview and is never sent back to the API.
type RecentCache struct {
	store LocalStore
}

func NewRecentCache(store LocalStore) *RecentCache {
	return &RecentCache{store: store}
}

// Save replaces the snapshot
func (r *RecentCache) Save(alerts []model.AlertRecord) {
	if alerts == nil {
		alerts = []model.AlertRecord{}
	}
	data, err := json.Marshal(alerts)
	if err != nil {
		return
	}
	if err := r.store.Set(KeyRecent, string(data)); err != nil {
		log.Printf("⚠️  Could not save recent alerts: %v", err)
	}
}

// Preview returns up to RecentPreviewSize alerts from the snapshot.
// A missing or unreadable snapshot yields an empty preview.
func (r *RecentCache) Preview() []model.AlertRecord {
	raw, ok := r.store.Get(KeyRecent)
	if !ok || raw == "" {
		return []model.AlertRecord{}
	}

	var alerts []model.AlertRecord
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		log.Printf("⚠️  Failed to parse recent alerts: %v", err)
		return []model.AlertRecord{}
	}
	if len(alerts) > RecentPreviewSize {
		alerts = alerts[:RecentPreviewSize]
	}
	return alerts
}
