package models

// ProfileSnapshot - копия медицинского профиля пользователя на момент вызова.
// Порядок полей совпадает с порядком проверки обязательных полей.
type ProfileSnapshot struct {
	FirstName             string `json:"firstName" validate:"required"`
	LastName              string `json:"lastName" validate:"required"`
	DOB                   string `json:"dob" validate:"required"`
	Phone                 string `json:"phoneNumber" validate:"required"`
	EmergencyContactName  string `json:"ICEname" validate:"required"`
	EmergencyContactPhone string `json:"ICEphone" validate:"required"`
	Relationship          string `json:"relationship" validate:"required"`
	SubjectID             string `json:"idNumber" validate:"required"`
	Email                 string `json:"email" validate:"required"`
	HomeAddress           string `json:"homeaddress" validate:"required"`
}
