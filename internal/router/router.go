// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shyamuday/paradigm-sub005/internal/handler"
)

type Config struct {
	CandleHandler *handler.CandleHandler
	AdminHandler  *handler.AdminHandler
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.Default()

	api := router.Group("/v1/")
	registerCandleRoutes(api, cfg.CandleHandler)
	registerAdminRoutes(api, cfg.AdminHandler)

	return router
}
