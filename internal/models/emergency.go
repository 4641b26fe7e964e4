package models

import (
	"time"

	"github.com/google/uuid"
)

// Status - статус экстренного вызова
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusOpen       Status = "OPEN"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRedirected Status = "REDIRECTED"
)

// ActiveStatuses - статусы, при которых вызов считается активным
var ActiveStatuses = []Status{StatusCreated, StatusOpen, StatusAssigned, StatusInProgress}

// TerminalStatuses - конечные статусы, после которых запись не меняется
var TerminalStatuses = []Status{StatusResolved, StatusRedirected}

// IsActive сообщает, относится ли статус к активному набору
func (s Status) IsActive() bool {
	switch s {
	case StatusCreated, StatusOpen, StatusAssigned, StatusInProgress:
		return true
	}
	return false
}

// IsTerminal сообщает, является ли статус конечным
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusRedirected
}

// IsValid проверяет, что статус входит в известный набор
func (s Status) IsValid() bool {
	return s.IsActive() || s.IsTerminal()
}

// Location - координаты в градусах
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// EmergencyRecord - запись экстренного вызова на стороне бэкенда
type EmergencyRecord struct {
	ID                uuid.UUID       `json:"id"`
	IncidentNumber    string          `json:"incident_number"`
	SubjectID         string          `json:"subject_id"`
	Status            Status          `json:"status"`
	Content           string          `json:"content"`
	Location          Location        `json:"location"`
	ResponderLocation *Location       `json:"responder_location,omitempty"`
	Profile           ProfileSnapshot `json:"profile"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EmergencyFilter - фильтр выборки: равенство по subjectId и OR по статусам
type EmergencyFilter struct {
	SubjectID string
	Statuses  []Status
}

// ActiveFilter возвращает фильтр активных вызовов субъекта
func ActiveFilter(subjectID string) EmergencyFilter {
	return EmergencyFilter{SubjectID: subjectID, Statuses: ActiveStatuses}
}

// Matches проверяет запись на соответствие фильтру
func (f EmergencyFilter) Matches(rec *EmergencyRecord) bool {
	if f.SubjectID != "" && rec.SubjectID != f.SubjectID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if rec.Status == s {
			return true
		}
	}
	return false
}

// EmergencyPatch - частичное обновление записи
type EmergencyPatch struct {
	Status            *Status   `json:"status,omitempty"`
	ResponderLocation *Location `json:"responder_location,omitempty"`
}
