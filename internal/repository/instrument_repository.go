package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
)

// InstrumentRepository manages the shared instrument reference data.
type InstrumentRepository interface {
	// GetOrCreateBySymbol resolves an instrument by symbol, provisioning it
	// with default exchange and type on first reference.
	GetOrCreateBySymbol(ctx context.Context, symbol string) (*models.Instrument, error)

	// GetBySymbol is an exact-match lookup. Returns ErrInstrumentNotFound
	// for unknown symbols.
	GetBySymbol(ctx context.Context, symbol string) (*models.Instrument, error)
}

type gormInstrumentRepository struct {
	db *gorm.DB
}

func NewGormInstrumentRepository(db *gorm.DB) InstrumentRepository {
	return &gormInstrumentRepository{db: db}
}

func (r *gormInstrumentRepository) GetOrCreateBySymbol(ctx context.Context, symbol string) (*models.Instrument, error) {
	instrument := models.Instrument{
		Symbol:         symbol,
		Name:           symbol,
		Exchange:       models.DefaultExchange,
		InstrumentType: models.DefaultInstrumentType,
	}
	err := r.db.WithContext(ctx).
		Where(models.Instrument{Symbol: symbol}).
		FirstOrCreate(&instrument).Error
	if err != nil {
		return nil, fmt.Errorf("get or create instrument %q: %w", symbol, err)
	}
	return &instrument, nil
}

func (r *gormInstrumentRepository) GetBySymbol(ctx context.Context, symbol string) (*models.Instrument, error) {
	var instrument models.Instrument
	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&instrument).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrInstrumentNotFound, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("get instrument %q: %w", symbol, err)
	}
	return &instrument, nil
}
