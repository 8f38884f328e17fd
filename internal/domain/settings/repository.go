package settings

import "context"

// SettingsRepository defines the persistence contract for rate settings.
// Values are read fresh on each call; there is no cache to invalidate.
type SettingsRepository interface {
	// LoadStored returns the stored key/value pairs (without defaults).
	LoadStored(ctx context.Context) (map[string]int64, error)

	// Store upserts the given key/value pairs. The caller has already
	// filtered the keys against the allow-list.
	Store(ctx context.Context, values map[string]int64) error
}
