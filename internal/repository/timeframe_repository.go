package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
)

// TimeframeRepository manages the fixed timeframe registry.
type TimeframeRepository interface {
	// EnsureDefaults idempotently seeds the canonical timeframe set.
	// Existing rows are left untouched.
	EnsureDefaults(ctx context.Context) error

	// GetActive returns all active timeframes, ascending by interval length.
	GetActive(ctx context.Context) ([]models.Timeframe, error)

	// GetByName is an exact-match lookup. Returns ErrTimeframeNotFound for
	// unregistered names.
	GetByName(ctx context.Context, name string) (*models.Timeframe, error)
}

type gormTimeframeRepository struct {
	db *gorm.DB
}

func NewGormTimeframeRepository(db *gorm.DB) TimeframeRepository {
	return &gormTimeframeRepository{db: db}
}

func (r *gormTimeframeRepository) EnsureDefaults(ctx context.Context) error {
	for _, tf := range models.DefaultTimeframes() {
		err := r.db.WithContext(ctx).
			Where(models.Timeframe{Name: tf.Name}).
			FirstOrCreate(&tf).Error
		if err != nil {
			return fmt.Errorf("seed timeframe %q: %w", tf.Name, err)
		}
	}
	return nil
}

func (r *gormTimeframeRepository) GetActive(ctx context.Context) ([]models.Timeframe, error) {
	var timeframes []models.Timeframe
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("interval_minutes ASC").
		Find(&timeframes).Error
	if err != nil {
		return nil, fmt.Errorf("list active timeframes: %w", err)
	}
	return timeframes, nil
}

func (r *gormTimeframeRepository) GetByName(ctx context.Context, name string) (*models.Timeframe, error) {
	var tf models.Timeframe
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&tf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTimeframeNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get timeframe %q: %w", name, err)
	}
	return &tf, nil
}
