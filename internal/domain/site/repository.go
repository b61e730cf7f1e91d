package site

import "context"

// SettingsRepository loads and stores the settings row
type SettingsRepository interface {
	// Get returns the settings, creating the default row when missing
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// SettingsCache caches the settings row
type SettingsCache interface {
	Get(ctx context.Context) (*Settings, bool)
	Set(ctx context.Context, settings *Settings)
	Invalidate(ctx context.Context)
}
