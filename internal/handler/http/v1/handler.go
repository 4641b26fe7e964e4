package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/antonD24/ELDI/internal/config"
	"github.com/antonD24/ELDI/internal/device"
	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DeviceRegistry - сессии устройств
type DeviceRegistry interface {
	Open(token string) (*device.Device, error)
	Get(subjectID string) (*device.Device, error)
	Close(subjectID string) bool
}

// TokenVerifier проверяет токен устройства и возвращает субъект
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type Handler struct {
	emergencyService service.EmergencyService
	profileService   service.ProfileService
	devices          DeviceRegistry
	verifier         TokenVerifier
	limiter          *RateLimiter
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(
	emergencyService service.EmergencyService,
	profileService service.ProfileService,
	devices DeviceRegistry,
	verifier TokenVerifier,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		emergencyService: emergencyService,
		profileService:   profileService,
		devices:          devices,
		verifier:         verifier,
		limiter:          NewRateLimiter(cfg.DeviceRateLimitRPS, cfg.DeviceRateLimitBurst, 10*time.Minute),
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// Limiter возвращает ограничитель запросов устройств
func (h *Handler) Limiter() *RateLimiter {
	return h.limiter
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeDeviceError переводит ошибки экрана вызова в HTTP-ответ
func (h *Handler) writeDeviceError(c *gin.Context, err error) {
	var verr *emergency.ValidationError
	var cerr *emergency.ConflictError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, emergency.ErrAuthentication), errors.Is(err, device.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, emergency.ErrLocationUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{"error": "active emergency already exists", "status": cerr.Status})
	case errors.Is(err, emergency.ErrHoldDebounced):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, emergency.ErrHoldInProgress), errors.Is(err, emergency.ErrHoldInhibited):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, emergency.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
