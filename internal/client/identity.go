package client

import (
	"log"

	"github.com/google/uuid"
)

// DeviceID returns the identifier stored under KeyDeviceID, creating and
// persisting a new random one on first use. When it cannot be persisted the
// fresh id is still returned, so history splits across sessions.
func DeviceID(store LocalStore) string {
	if id, ok := store.Get(KeyDeviceID); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	if err := store.Set(KeyDeviceID, id); err != nil {
		log.Printf("⚠️  Could not persist device id: %v", err)
	}
	return id
}
