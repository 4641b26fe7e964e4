package v1

import (
	"errors"
	"net/http"

	"github.com/antonD24/ELDI/internal/device"
	"github.com/antonD24/ELDI/internal/location"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @Summary Open device session
// @Description Verify device token, set up the emergency screen for its subject and start status sync
// @Tags Device
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Device token"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /device/session [post]
func (h *Handler) openSession(c *gin.Context) {
	log := h.logger.WithField("method", "openSession")

	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Invalid session request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.WithError(err).Warn("Session request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + err.Error()})
		return
	}

	d, err := h.devices.Open(req.Token)
	if err != nil {
		log.WithError(err).Warn("Failed to open device session")
		h.writeDeviceError(c, err)
		return
	}

	log.WithField("subject_id", d.SubjectID).Info("Device session opened")
	c.JSON(http.StatusOK, SessionResponse{SubjectID: d.SubjectID, State: d.Controller.State(c.Request.Context())})
}

// @Summary Close device session
// @Description Stop status sync and drop the device screen
// @Tags Device
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 404 {object} map[string]string "No session"
// @Router /device/session [delete]
func (h *Handler) closeSession(c *gin.Context) {
	subjectID := c.GetString(subjectKey)
	if !h.devices.Close(subjectID) {
		c.JSON(http.StatusNotFound, gin.H{"error": device.ErrNoSession.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Press the SOS button
// @Description Start the hold gesture. The emergency is sent once the hold completes.
// @Tags Device
// @Security BearerAuth
// @Produce json
// @Success 202 {object} emergency.ViewState
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 409 {object} map[string]string "Active emergency or hold in progress"
// @Failure 422 {object} map[string]string "Incomplete profile or location unavailable"
// @Failure 429 {object} map[string]string "Press debounced"
// @Router /device/hold/start [post]
func (h *Handler) startHold(c *gin.Context) {
	d, ok := h.device(c)
	if !ok {
		return
	}

	if err := d.Controller.PressIn(c.Request.Context()); err != nil {
		h.logger.WithFields(logrus.Fields{
			"method":     "startHold",
			"subject_id": d.SubjectID,
		}).WithError(err).Info("Hold not started")
		h.writeDeviceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, d.Controller.State(c.Request.Context()))
}

// @Summary Release the SOS button
// @Description Cancel the hold gesture if it has not completed yet
// @Tags Device
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ReleaseResponse
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /device/hold/release [post]
func (h *Handler) releaseHold(c *gin.Context) {
	d, ok := h.device(c)
	if !ok {
		return
	}
	cancelled := d.Controller.PressOut()
	c.JSON(http.StatusOK, ReleaseResponse{Cancelled: cancelled, State: d.Controller.State(c.Request.Context())})
}

// @Summary Get emergency screen state
// @Description Button state, hold progress, active emergency status and the next pending notice
// @Tags Device
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /device/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	d, ok := h.device(c)
	if !ok {
		return
	}
	resp := StatusResponse{State: d.Controller.State(c.Request.Context())}
	if n, ok := d.Controller.TakeNotice(); ok {
		resp.Notice = &n
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Report device location
// @Description Update the device location fix or report that location permission was denied
// @Tags Device
// @Security BearerAuth
// @Accept json
// @Param request body LocationRequest true "Location"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /device/location [post]
func (h *Handler) updateLocation(c *gin.Context) {
	log := h.logger.WithField("method", "updateLocation")

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Invalid location request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.WithError(err).Warn("Location request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + err.Error()})
		return
	}
	if !req.PermissionDenied && (req.Lat == nil || req.Long == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and long are required"})
		return
	}

	d, ok := h.device(c)
	if !ok {
		return
	}

	if req.PermissionDenied {
		d.DenyLocation()
		c.Status(http.StatusNoContent)
		return
	}
	if err := d.UpdateLocation(models.Location{Lat: *req.Lat, Long: *req.Long}); err != nil {
		if errors.Is(err, location.ErrOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to update location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get own profile
// @Description Medical profile of the device subject with the list of missing required fields
// @Tags Device
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /device/profile [get]
func (h *Handler) getProfile(c *gin.Context) {
	subjectID := c.GetString(subjectKey)
	log := h.logger.WithFields(logrus.Fields{"method": "getProfile", "subject_id": subjectID})

	p, err := h.profileService.GetProfile(c.Request.Context(), subjectID)
	if err != nil {
		log.WithError(err).Error("Failed to get profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p))
}

// @Summary Save own profile
// @Description Create or replace the medical profile of the device subject. Partial profiles are accepted.
// @Tags Device
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ProfileRequest true "Profile"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 422 {object} map[string]string "Invalid field format"
// @Router /device/profile [put]
func (h *Handler) saveProfile(c *gin.Context) {
	subjectID := c.GetString(subjectKey)
	log := h.logger.WithFields(logrus.Fields{"method": "saveProfile", "subject_id": subjectID})

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Warn("Invalid profile request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.WithError(err).Warn("Profile request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed: " + err.Error()})
		return
	}

	saved, err := h.profileService.SaveProfile(c.Request.Context(), toProfileSnapshot(req, subjectID))
	if err != nil {
		log.WithError(err).Warn("Failed to save profile")
		h.writeDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(saved))
}

// @Summary Delete own profile
// @Description Remove the medical profile of the device subject and drop its cached copy
// @Tags Device
// @Security BearerAuth
// @Success 204 "Profile deleted"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /device/profile [delete]
func (h *Handler) deleteProfile(c *gin.Context) {
	subjectID := c.GetString(subjectKey)
	log := h.logger.WithFields(logrus.Fields{"method": "deleteProfile", "subject_id": subjectID})

	err := h.profileService.DeleteProfile(c.Request.Context(), subjectID)
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	case err != nil:
		log.WithError(err).Error("Failed to delete profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// device достает устройство субъекта из реестра; при отсутствии сессии пишет 401
func (h *Handler) device(c *gin.Context) (*device.Device, bool) {
	d, err := h.devices.Get(c.GetString(subjectKey))
	if err != nil {
		h.writeDeviceError(c, err)
		return nil, false
	}
	return d, true
}
