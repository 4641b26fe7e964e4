package v1

import (
	"errors"
	"net/http"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// @Summary List emergencies
// @Description List emergencies of one subject, or the most recently updated emergencies with pagination
// @Tags Emergencies
// @Security ApiKeyAuth
// @Produce json
// @Param subject_id query string false "Subject ID"
// @Param status query string false "Comma separated statuses, e.g. OPEN,ASSIGNED"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {array} EmergencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /emergencies [get]
func (h *Handler) listEmergencies(c *gin.Context) {
	log := h.logger.WithField("method", "listEmergencies")

	var q EmergencyListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		log.WithError(err).Warn("Invalid query parameters")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if err := h.validate.Struct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + err.Error()})
		return
	}
	statuses, ok := parseStatuses(q.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidStatus.Error()})
		return
	}

	var (
		recs []*models.EmergencyRecord
		err  error
	)
	if q.SubjectID != "" {
		recs, err = h.emergencyService.List(c.Request.Context(), models.EmergencyFilter{SubjectID: q.SubjectID, Statuses: statuses})
	} else {
		recs, err = h.emergencyService.ListRecent(c.Request.Context(), statuses, q.Page, q.PageSize)
	}
	if err != nil {
		log.WithError(err).Error("Failed to list emergencies")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toEmergencyResponses(recs))
}

// @Summary Get emergency by ID
// @Description Get a single emergency record
// @Tags Emergencies
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Emergency ID"
// @Success 200 {object} EmergencyResponse
// @Failure 400 {object} map[string]string "Invalid ID format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Emergency not found"
// @Router /emergencies/{id} [get]
func (h *Handler) getEmergency(c *gin.Context) {
	log := h.logger.WithField("method", "getEmergency")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid emergency ID format"})
		return
	}

	rec, err := h.emergencyService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to get emergency")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toEmergencyResponse(rec))
}

// @Summary Update emergency
// @Description Change the status of an emergency and/or the responder location
// @Tags Emergencies
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Emergency ID"
// @Param request body UpdateEmergencyRequest true "Patch"
// @Success 200 {object} EmergencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Emergency not found"
// @Failure 409 {object} map[string]string "Emergency already finalized"
// @Router /emergencies/{id} [patch]
func (h *Handler) updateEmergency(c *gin.Context) {
	log := h.logger.WithFields(logrus.Fields{"method": "updateEmergency", "id": c.Param("id")})

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid emergency ID format"})
		return
	}

	var req UpdateEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + err.Error()})
		return
	}
	if req.Status == nil && req.ResponderLocation == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	rec, err := h.emergencyService.Update(c.Request.Context(), id, toPatch(req))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrFinalized):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			log.WithError(err).Error("Failed to update emergency")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	log.WithField("status", rec.Status).Info("Emergency updated")
	c.JSON(http.StatusOK, toEmergencyResponse(rec))
}
