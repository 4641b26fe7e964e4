package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Системные маршруты
	system := api.Group("/system")
	{
		system.GET("/health", h.healthCheck)
	}

	// Сессия устройства открывается по токену в теле запроса
	api.POST("/device/session", h.limiter.Middleware(h.logger), h.openSession)

	deviceGroup := api.Group("/device")
	deviceGroup.Use(DeviceAuthMiddleware(h.verifier, h.logger), h.limiter.Middleware(h.logger))
	{
		deviceGroup.DELETE("/session", h.closeSession)
		deviceGroup.POST("/hold/start", h.startHold)
		deviceGroup.POST("/hold/release", h.releaseHold)
		deviceGroup.GET("/status", h.getStatus)
		deviceGroup.POST("/location", h.updateLocation)
		deviceGroup.GET("/profile", h.getProfile)
		deviceGroup.PUT("/profile", h.saveProfile)
		deviceGroup.DELETE("/profile", h.deleteProfile)
	}

	// Маршруты диспетчеров, защищенные API-ключом
	emergencies := api.Group("/emergencies")
	emergencies.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		emergencies.GET("", h.listEmergencies)
		emergencies.GET("/:id", h.getEmergency)
		emergencies.PATCH("/:id", h.updateEmergency)
	}
}
