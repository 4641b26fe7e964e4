package v1

import (
	"strings"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
)

func toLocationDTO(loc models.Location) LocationDTO {
	return LocationDTO{Lat: loc.Lat, Long: loc.Long}
}

func toEmergencyResponse(rec *models.EmergencyRecord) EmergencyResponse {
	resp := EmergencyResponse{
		ID:             rec.ID,
		IncidentNumber: rec.IncidentNumber,
		SubjectID:      rec.SubjectID,
		Status:         string(rec.Status),
		Content:        rec.Content,
		Location:       toLocationDTO(rec.Location),
		Profile:        rec.Profile,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	if rec.ResponderLocation != nil {
		loc := toLocationDTO(*rec.ResponderLocation)
		resp.ResponderLocation = &loc
	}
	return resp
}

func toEmergencyResponses(recs []*models.EmergencyRecord) []EmergencyResponse {
	out := make([]EmergencyResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toEmergencyResponse(rec))
	}
	return out
}

func toProfileSnapshot(req ProfileRequest, subjectID string) *models.ProfileSnapshot {
	return &models.ProfileSnapshot{
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		DOB:                   strings.TrimSpace(req.DOB),
		Phone:                 strings.TrimSpace(req.Phone),
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
		Relationship:          strings.TrimSpace(req.Relationship),
		SubjectID:             subjectID,
		Email:                 strings.TrimSpace(req.Email),
		HomeAddress:           strings.TrimSpace(req.HomeAddress),
	}
}

func toProfileResponse(p *models.ProfileSnapshot) ProfileResponse {
	missing := emergency.MissingFields(p)
	if missing == nil {
		missing = []string{}
	}
	return ProfileResponse{Profile: *p, MissingFields: missing}
}

func toPatch(req UpdateEmergencyRequest) models.EmergencyPatch {
	var patch models.EmergencyPatch
	if req.Status != nil {
		status := models.Status(*req.Status)
		patch.Status = &status
	}
	if req.ResponderLocation != nil {
		patch.ResponderLocation = &models.Location{Lat: req.ResponderLocation.Lat, Long: req.ResponderLocation.Long}
	}
	return patch
}

// parseStatuses разбирает список статусов через запятую
func parseStatuses(raw string) ([]models.Status, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	var statuses []models.Status
	for _, part := range strings.Split(raw, ",") {
		s := models.Status(strings.ToUpper(strings.TrimSpace(part)))
		if !s.IsValid() {
			return nil, false
		}
		statuses = append(statuses, s)
	}
	return statuses, true
}
