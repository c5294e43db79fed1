package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RetentionRunner is the admin cleanup surface. Satisfied by
// service.RetentionService.
type RetentionRunner interface {
	CleanupTicks(ctx context.Context, retentionDays int) (int64, error)
	CleanupCandles(ctx context.Context) (int64, error)
}

type AdminHandler struct {
	retention RetentionRunner
}

func NewAdminHandler(retention RetentionRunner) *AdminHandler {
	return &AdminHandler{retention: retention}
}

type cleanupTicksRequest struct {
	RetentionDays int `json:"retention_days"`
}

func (h *AdminHandler) CleanupTicks(c *gin.Context) {
	var req cleanupTicksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := h.retention.CleanupTicks(c.Request.Context(), req.RetentionDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *AdminHandler) CleanupCandles(c *gin.Context) {
	deleted, err := h.retention.CleanupCandles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
