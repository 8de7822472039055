package http

import (
	"github.com/gin-gonic/gin"
	"github.com/camview/agent/src/models"
	"github.com/camview/agent/src/routers/websocket"
)

func AddRoutes(r *gin.Engine, configDirectory string, configuration *models.Configuration, communication *models.Communication) *gin.RouterGroup {
	api := r.Group("/api")
	{
		api.GET("/status", func(c *gin.Context) {
			GetStatus(c, communication)
		})
		api.GET("/events", GetEvents)

		api.GET("/config", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"config": configuration.Config,
				"custom": configuration.CustomConfig,
				"global": configuration.GlobalConfig,
			})
		})
		api.POST("/config", func(c *gin.Context) {
			UpdateConfig(c, configDirectory, configuration, communication)
		})

		api.POST("/detector/pause", PauseDetector)
		api.POST("/detector/resume", ResumeDetector)

		api.GET("/restart", func(c *gin.Context) {
			communication.HandleBootstrap <- "restart"
			c.JSON(200, gin.H{
				"restarted": true,
			})
		})
		api.GET("/stop", func(c *gin.Context) {
			communication.HandleBootstrap <- "stop"
			c.JSON(200, gin.H{
				"stopped": true,
			})
		})
	}

	r.GET("/ws", websocket.WebsocketHandler)

	return api
}
