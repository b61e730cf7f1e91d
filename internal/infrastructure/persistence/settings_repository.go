package persistence

import (
	"context"

	"github.com/shopfront/backend/internal/domain/site"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings row, inserting the defaults on first use
func (r *GormSettingsRepository) Get(ctx context.Context) (*site.Settings, error) {
	settings := site.DefaultSettings()
	err := conn(ctx, r.db).
		Where(site.Settings{ID: site.SettingsID}).
		FirstOrCreate(settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Save upserts the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, settings *site.Settings) error {
	settings.ID = site.SettingsID
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
}

var _ site.SettingsRepository = (*GormSettingsRepository)(nil)
