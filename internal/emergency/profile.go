package emergency

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 14

	dobLayout = "2006-01-02"
)

var (
	ErrInvalidPhone = errors.New("phone number must contain 10 to 14 digits")
	ErrInvalidDOB   = errors.New("date of birth must be a valid date (YYYY-MM-DD)")
)

var profileValidator = newProfileValidator()

// newProfileValidator возвращает валидатор, который называет поля по json-тегам
func newProfileValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// MissingFields перечисляет незаполненные обязательные поля профиля в порядке объявления.
// Для nil возвращаются все поля.
func MissingFields(p *models.ProfileSnapshot) []string {
	if p == nil {
		p = &models.ProfileSnapshot{}
	}
	err := profileValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// ValidateProfile проверяет обязательные поля и возвращает нормализованную копию профиля
func ValidateProfile(p *models.ProfileSnapshot) (*models.ProfileSnapshot, error) {
	if missing := MissingFields(p); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	out := *p
	phone, err := NormalizePhone(p.Phone)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"phoneNumber"}, Reason: err.Error()}
	}
	out.Phone = phone

	icePhone, err := NormalizePhone(p.EmergencyContactPhone)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"ICEphone"}, Reason: err.Error()}
	}
	out.EmergencyContactPhone = icePhone

	dob, err := FormatDOB(p.DOB)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"dob"}, Reason: err.Error()}
	}
	out.DOB = dob

	return &out, nil
}

// NormalizePhone приводит номер к виду +<код страны><цифры>.
// Номера без кода страны считаются британскими (+44).
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", ErrInvalidPhone
	}

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+44" + digits[1:], nil
	case len(digits) == 10:
		return "+44" + digits, nil
	case len(digits) == 11:
		return "+44" + digits, nil
	default:
		return "+" + digits, nil
	}
}

// FormatDOB приводит дату рождения к виду YYYY-MM-DD
func FormatDOB(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{dobLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(dobLayout), nil
		}
	}
	return "", ErrInvalidDOB
}
