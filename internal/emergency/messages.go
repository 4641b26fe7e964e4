package emergency

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/antonD24/ELDI/internal/geo"
	"github.com/antonD24/ELDI/internal/models"
)

// ProfileRoute - экран редактирования профиля
const ProfileRoute = "/editProfile"

// Notice - одноразовое уведомление пользователю
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Route   string `json:"route,omitempty"`
}

var (
	noticeIncompleteProfile = Notice{
		Title:   "Incomplete Profile",
		Message: "Your profile is missing some required information. Please update your profile.",
		Route:   ProfileRoute,
	}
	noticeLocation = Notice{
		Title:   "Location Error",
		Message: "Your location is not available. Please enable location services.",
	}
	noticeAuthentication = Notice{
		Title:   "Authentication Error",
		Message: "You are not authenticated. Please log in again.",
	}
	noticeActiveEmergency = Notice{
		Title:   "Active Emergency",
		Message: "You already have an active emergency request.",
	}
	noticeRetry = Notice{
		Title:   "Error",
		Message: "Failed to send emergency alert. Please try again.",
	}
)

// StatusMessage возвращает заголовок и описание статуса для экрана
func StatusMessage(snap Snapshot, hasProfile bool, required time.Duration) (string, string) {
	if !snap.Active {
		switch snap.LastOutcome {
		case models.StatusResolved:
			return "Emergency Resolved", "Your emergency has been resolved. Hold the button again if you need help."
		case models.StatusRedirected:
			return "Emergency Redirected", "Your emergency has been redirected to another service."
		}
		if !hasProfile {
			return "Ready to Request", "Complete your profile to enable emergency alerts."
		}
		secs := int(math.Round(required.Seconds()))
		return "Ready to Request", fmt.Sprintf("Hold the emergency button for %d seconds to send an alert.", secs)
	}

	var detail string
	switch snap.Status {
	case models.StatusCreated:
		detail = "Your emergency request has been sent."
	case models.StatusAssigned:
		detail = "A responder has been assigned to your emergency."
	case models.StatusInProgress:
		detail = "Responders are attending your emergency."
	default:
		detail = "Your emergency request is being processed. Help is on the way."
	}
	if snap.DistanceKm != nil {
		detail += fmt.Sprintf(" Responder is %s away.", geo.FormatDistance(*snap.DistanceKm))
	}
	return "Emergency Active", detail
}

func noticeFor(err error) (Notice, bool) {
	var verr *ValidationError
	switch {
	case err == nil:
		return Notice{}, false
	case errors.As(err, &verr):
		return noticeIncompleteProfile, true
	case errors.Is(err, ErrLocationUnavailable):
		return noticeLocation, true
	case errors.Is(err, ErrAuthentication):
		return noticeAuthentication, true
	case errors.Is(err, ErrConflict):
		return noticeActiveEmergency, true
	default:
		return noticeRetry, true
	}
}
