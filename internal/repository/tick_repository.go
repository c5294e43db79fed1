package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
)

// TickRepository manages the append-only tick store.
type TickRepository interface {
	// CreateTick appends one tick row.
	CreateTick(ctx context.Context, tick *models.Tick) error

	// LatestByInstrument returns the most recent tick by timestamp, or nil
	// when the instrument has no ticks yet.
	LatestByInstrument(ctx context.Context, instrumentID uint) (*models.Tick, error)

	// DeleteOlderThan removes ticks observed before the cutoff and returns
	// the number of rows deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormTickRepository struct {
	db *gorm.DB
}

func NewGormTickRepository(db *gorm.DB) TickRepository {
	return &gormTickRepository{db: db}
}

func (r *gormTickRepository) CreateTick(ctx context.Context, tick *models.Tick) error {
	if err := r.db.WithContext(ctx).Create(tick).Error; err != nil {
		return fmt.Errorf("create tick: %w", err)
	}
	return nil
}

func (r *gormTickRepository) LatestByInstrument(ctx context.Context, instrumentID uint) (*models.Tick, error) {
	var tick models.Tick
	err := r.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("timestamp DESC").
		First(&tick).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest tick for instrument %d: %w", instrumentID, err)
	}
	return &tick, nil
}

func (r *gormTickRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.Tick{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete ticks before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
