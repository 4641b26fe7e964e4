package emergency

import (
	"errors"
	"testing"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeProfile() *models.ProfileSnapshot {
	return &models.ProfileSnapshot{
		FirstName:             "Jane",
		LastName:              "Doe",
		DOB:                   "1990-04-12",
		Phone:                 "07700 900123",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "07700 900456",
		Relationship:          "spouse",
		SubjectID:             "AB123456C",
		Email:                 "jane@example.com",
		HomeAddress:           "1 High Street, London",
	}
}

func TestMissingFields_Complete(t *testing.T) {
	assert.Empty(t, MissingFields(completeProfile()))
}

func TestMissingFields_Single(t *testing.T) {
	p := completeProfile()
	p.EmergencyContactPhone = ""

	assert.Equal(t, []string{"ICEphone"}, MissingFields(p))
}

func TestMissingFields_NilProfile(t *testing.T) {
	assert.Equal(t, []string{
		"firstName", "lastName", "dob", "phoneNumber", "ICEname",
		"ICEphone", "relationship", "idNumber", "email", "homeaddress",
	}, MissingFields(nil))
}

func TestValidateProfile_Normalizes(t *testing.T) {
	p := completeProfile()
	p.DOB = "1990-04-12T00:00:00Z"

	out, err := ValidateProfile(p)

	require.NoError(t, err)
	assert.Equal(t, "+447700900123", out.Phone)
	assert.Equal(t, "+447700900456", out.EmergencyContactPhone)
	assert.Equal(t, "1990-04-12", out.DOB)
	// исходный профиль не меняется
	assert.Equal(t, "07700 900123", p.Phone)
}

func TestValidateProfile_MissingFields(t *testing.T) {
	p := completeProfile()
	p.FirstName = ""
	p.Email = ""

	_, err := ValidateProfile(p)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"firstName", "email"}, verr.Fields)
}

func TestValidateProfile_BadPhone(t *testing.T) {
	p := completeProfile()
	p.EmergencyContactPhone = "12345"

	_, err := ValidateProfile(p)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"ICEphone"}, verr.Fields)
	assert.NotEmpty(t, verr.Reason)
}

func TestValidateProfile_BadDOB(t *testing.T) {
	p := completeProfile()
	p.DOB = "twelfth of april"

	_, err := ValidateProfile(p)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"dob"}, verr.Fields)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "07700 900123", want: "+447700900123"},
		{in: "7700900123", want: "+447700900123"},
		{in: "(020) 7946-0958", want: "+442079460958"},
		{in: "44 7700 900123", want: "+447700900123"},
		{in: "+44 7700 900123", want: "+447700900123"},
		{in: "17700900123", want: "+4417700900123"},
		{in: "+1 (555) 010-4477 12", want: "+1555010447712"},
		{in: "123456789", wantErr: true},
		{in: "123456789012345", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizePhone(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPhone, "in=%q", tt.in)
			continue
		}
		require.NoError(t, err, "in=%q", tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
	}
}
