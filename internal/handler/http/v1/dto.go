package v1

import (
	"time"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
)

// SessionRequest - токен устройства для открытия сессии
type SessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse - открытая сессия устройства
type SessionResponse struct {
	SubjectID string              `json:"subject_id"`
	State     emergency.ViewState `json:"state"`
}

// StatusResponse - состояние экрана и одно уведомление, если оно есть
type StatusResponse struct {
	State  emergency.ViewState `json:"state"`
	Notice *emergency.Notice   `json:"notice,omitempty"`
}

// ReleaseResponse - результат отпускания кнопки
type ReleaseResponse struct {
	Cancelled bool                `json:"cancelled"`
	State     emergency.ViewState `json:"state"`
}

// LocationRequest - координата устройства или отказ в доступе к геолокации
type LocationRequest struct {
	Lat              *float64 `json:"lat" validate:"omitempty,latitude"`
	Long             *float64 `json:"long" validate:"omitempty,longitude"`
	PermissionDenied bool     `json:"permission_denied"`
}

// LocationDTO - координаты в градусах
type LocationDTO struct {
	Lat  float64 `json:"lat" validate:"latitude"`
	Long float64 `json:"long" validate:"longitude"`
}

// ProfileRequest - медицинский профиль. idNumber берется из токена устройства.
type ProfileRequest struct {
	FirstName             string `json:"firstName" validate:"omitempty,max=100"`
	LastName              string `json:"lastName" validate:"omitempty,max=100"`
	DOB                   string `json:"dob" validate:"omitempty,max=32"`
	Phone                 string `json:"phoneNumber" validate:"omitempty,max=32"`
	EmergencyContactName  string `json:"ICEname" validate:"omitempty,max=100"`
	EmergencyContactPhone string `json:"ICEphone" validate:"omitempty,max=32"`
	Relationship          string `json:"relationship" validate:"omitempty,max=50"`
	Email                 string `json:"email" validate:"omitempty,email"`
	HomeAddress           string `json:"homeaddress" validate:"omitempty,max=255"`
}

// ProfileResponse - профиль и список незаполненных обязательных полей
type ProfileResponse struct {
	Profile       models.ProfileSnapshot `json:"profile"`
	MissingFields []string               `json:"missing_fields"`
}

// EmergencyResponse - представление вызова для диспетчера
type EmergencyResponse struct {
	ID                uuid.UUID              `json:"id"`
	IncidentNumber    string                 `json:"incident_number"`
	SubjectID         string                 `json:"subject_id"`
	Status            string                 `json:"status"`
	Content           string                 `json:"content"`
	Location          LocationDTO            `json:"location"`
	ResponderLocation *LocationDTO           `json:"responder_location,omitempty"`
	Profile           models.ProfileSnapshot `json:"profile"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// UpdateEmergencyRequest - изменение статуса вызова и/или позиции диспетчера
type UpdateEmergencyRequest struct {
	Status            *string      `json:"status" validate:"omitempty,oneof=CREATED OPEN ASSIGNED IN_PROGRESS RESOLVED REDIRECTED"`
	ResponderLocation *LocationDTO `json:"responder_location"`
}

// EmergencyListQuery - параметры выборки вызовов
type EmergencyListQuery struct {
	SubjectID string `form:"subject_id" validate:"omitempty,max=64"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
