package api

import (
	"net/http"

	_ "birdsos/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "BirdsOS API",
			"version":     s.config.Version,
			"description": "Motion-triggered bird feeder camera: event recording, live streaming and GPIO control",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":      "/health",
				"device_info": "/",
				"system":      "/api/v1/system",
				"camera":      "/api/v1/camera",
				"recordings":  "/api/v1/recordings",
				"hardware":    "/api/v1/hardware",
				"config":      "/api/v1/config",
				"maintenance": "/api/v1/maintenance",
				"websocket":   "/ws/:topic",
			},
			"device_id": s.config.DeviceID,
			"port":      s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
