// Package handler exposes the candle read API and admin API over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shyamuday/paradigm-sub005/internal/models"
	"github.com/Shyamuday/paradigm-sub005/internal/repository"
	"github.com/Shyamuday/paradigm-sub005/internal/service"
)

// CandleQueries is the read API surface. Satisfied by
// service.CandleQueryService.
type CandleQueries interface {
	GetRange(ctx context.Context, symbol, timeframe string, from, to time.Time, limit int) (*service.CandleRange, error)
	GetLatest(ctx context.Context, symbol, timeframe string) (*models.Candle, error)
	GetMultiTimeframeLatest(ctx context.Context, symbol string) (map[string]*models.Candle, error)
}

// QualityReader is the diagnostics surface. Satisfied by
// service.QualityMonitor.
type QualityReader interface {
	DataQuality(ctx context.Context, symbol string) (*service.DataQuality, error)
}

type CandleHandler struct {
	queries CandleQueries
	quality QualityReader
}

func NewCandleHandler(queries CandleQueries, quality QualityReader) *CandleHandler {
	return &CandleHandler{
		queries: queries,
		quality: quality,
	}
}

type rangeQuery struct {
	Symbol    string `form:"symbol" binding:"required"`
	Timeframe string `form:"timeframe" binding:"required"`
	From      int64  `form:"from"`  // epoch ms, default 0
	To        int64  `form:"to"`    // epoch ms, default now
	Limit     int    `form:"limit"` // default 100
}

func (h *CandleHandler) GetRange(c *gin.Context) {
	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from := time.UnixMilli(q.From).UTC()
	to := time.Now().UTC()
	if q.To > 0 {
		to = time.UnixMilli(q.To).UTC()
	}

	result, err := h.queries.GetRange(c.Request.Context(), q.Symbol, q.Timeframe, from, to, q.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type latestQuery struct {
	Symbol    string `form:"symbol" binding:"required"`
	Timeframe string `form:"timeframe" binding:"required"`
}

func (h *CandleHandler) GetLatest(c *gin.Context) {
	var q latestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candle, err := h.queries.GetLatest(c.Request.Context(), q.Symbol, q.Timeframe)
	if err != nil {
		respondError(c, err)
		return
	}
	// No candle yet is an empty result, not an error.
	c.JSON(http.StatusOK, gin.H{"candle": candle})
}

func (h *CandleHandler) GetMultiTimeframeLatest(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	candles, err := h.queries.GetMultiTimeframeLatest(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "candles": candles})
}

func (h *CandleHandler) GetQuality(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	quality, err := h.quality.DataQuality(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quality)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInstrumentNotFound),
		errors.Is(err, repository.ErrTimeframeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
