package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shyamuday/paradigm-sub005/internal/handler"
)

func registerCandleRoutes(router *gin.RouterGroup, candleHandler *handler.CandleHandler) {
	candles := router.Group("/candles")
	{
		candles.GET("", candleHandler.GetRange)
		candles.GET("/latest", candleHandler.GetLatest)
		candles.GET("/multi", candleHandler.GetMultiTimeframeLatest)
	}

	router.GET("/quality", candleHandler.GetQuality)
}

func registerAdminRoutes(router *gin.RouterGroup, adminHandler *handler.AdminHandler) {
	admin := router.Group("/admin")
	{
		admin.POST("/cleanup/ticks", adminHandler.CleanupTicks)
		admin.POST("/cleanup/candles", adminHandler.CleanupCandles)
	}
}
