package domain

import "context"

// Storage keys. Their values are the wire format shared with the host.
const (
	// RegistryKey holds the JSON-encoded array of users.
	RegistryKey = "users"
	// SessionKey holds the plain username of the saved session.
	SessionKey = "loggedInUser"
)

// LocalStorage is a string key/value store scoped to one browser profile.
// GetItem returns ok=false when the key is absent.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// StorageProvider hands out the LocalStorage of a profile.
type StorageProvider interface {
	LocalStorage(profileID string) LocalStorage
}
