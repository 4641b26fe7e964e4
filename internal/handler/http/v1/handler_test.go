package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/antonD24/ELDI/internal/auth"
	"github.com/antonD24/ELDI/internal/config"
	"github.com/antonD24/ELDI/internal/device"
	"github.com/antonD24/ELDI/internal/emergency"
	emergencymocks "github.com/antonD24/ELDI/internal/emergency/mocks"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service"
	"github.com/antonD24/ELDI/internal/service/mocks"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSubject = "AB123456C"

var apiKeyHeader = map[string]string{"X-API-Key": "test-api-key"}

type handlerFixture struct {
	router     *gin.Engine
	emergency  *mocks.MockEmergencyService
	profiles   *mocks.MockProfileService
	verifier   *auth.TokenVerifier
	ctrl       *gomock.Controller
	deviceAuth map[string]string
}

// newTestHandler создает Handler с мокированными сервисами и настоящим реестром устройств
func newTestHandler(t *testing.T, cfgOpts ...func(*config.Config)) *handlerFixture {
	ctrl := gomock.NewController(t)
	emergencyService := mocks.NewMockEmergencyService(ctrl)
	profileService := mocks.NewMockProfileService(ctrl)

	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys:              []string{"test-api-key"},
		DeviceRateLimitRPS:   1000,
		DeviceRateLimitBurst: 1000,
	}
	for _, opt := range cfgOpts {
		opt(cfg)
	}

	verifier := auth.NewTokenVerifier("secret", "", nil)
	registry := device.NewRegistry(context.Background(), device.Deps{
		Data:           emergencyService,
		Profiles:       profileService,
		Verifier:       verifier,
		Clock:          clockwork.NewFakeClock(),
		HoldCfg:        emergency.DefaultHoldConfig(),
		LocationMaxAge: 30 * time.Second,
		Logger:         logger,
	})
	t.Cleanup(registry.CloseAll)

	handler := NewHandler(emergencyService, profileService, registry, verifier, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	token, err := verifier.Issue(testSubject, time.Hour)
	require.NoError(t, err)

	return &handlerFixture{
		router:     router,
		emergency:  emergencyService,
		profiles:   profileService,
		verifier:   verifier,
		ctrl:       ctrl,
		deviceAuth: map[string]string{"Authorization": "Bearer " + token},
	}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func completeProfile() *models.ProfileSnapshot {
	return &models.ProfileSnapshot{
		FirstName:             "Jane",
		LastName:              "Doe",
		DOB:                   "1990-04-12",
		Phone:                 "+447700900123",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "+447700900456",
		Relationship:          "spouse",
		SubjectID:             testSubject,
		Email:                 "jane@example.com",
		HomeAddress:           "1 High Street, London",
	}
}

// openSession открывает сессию устройства без активных вызовов
func (f *handlerFixture) openSession(t *testing.T, profile *models.ProfileSnapshot) {
	t.Helper()
	f.openSessionWith(t, func() *models.ProfileSnapshot { return profile })
}

// openSessionWith открывает сессию; профиль на каждом чтении берется из current
func (f *handlerFixture) openSessionWith(t *testing.T, current func() *models.ProfileSnapshot) {
	t.Helper()
	sub := emergencymocks.NewMockSubscription(f.ctrl)
	sub.EXPECT().Unsubscribe().Return(nil).AnyTimes()

	filter := models.EmergencyFilter{SubjectID: testSubject}
	f.emergency.EXPECT().SubscribeOnCreate(gomock.Any(), filter, gomock.Any()).Return(sub, nil).Times(1)
	f.emergency.EXPECT().SubscribeOnUpdate(gomock.Any(), filter, gomock.Any()).Return(sub, nil).Times(1)
	f.emergency.EXPECT().List(gomock.Any(), models.ActiveFilter(testSubject)).Return(nil, nil).Times(1)
	f.profiles.EXPECT().GetProfile(gomock.Any(), testSubject).
		DoAndReturn(func(context.Context, string) (*models.ProfileSnapshot, error) {
			return current(), nil
		}).AnyTimes()

	token, err := f.verifier.Issue(testSubject, time.Hour)
	require.NoError(t, err)
	w := makeRequest(f.router, "POST", "/api/v1/device/session", jsonBody(t, SessionRequest{Token: token}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestOpenSession_Success(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	sub := emergencymocks.NewMockSubscription(f.ctrl)
	sub.EXPECT().Unsubscribe().Return(nil).AnyTimes()
	token, err := f.verifier.Issue(testSubject, time.Hour)
	require.NoError(t, err)

	// Ожидания
	f.emergency.EXPECT().SubscribeOnCreate(gomock.Any(), gomock.Any(), gomock.Any()).Return(sub, nil).Times(1)
	f.emergency.EXPECT().SubscribeOnUpdate(gomock.Any(), gomock.Any(), gomock.Any()).Return(sub, nil).Times(1)
	f.emergency.EXPECT().List(gomock.Any(), models.ActiveFilter(testSubject)).Return(nil, nil).Times(1)
	f.profiles.EXPECT().GetProfile(gomock.Any(), testSubject).Return(completeProfile(), nil).AnyTimes()

	// Действие
	w := makeRequest(f.router, "POST", "/api/v1/device/session", jsonBody(t, SessionRequest{Token: token}))

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testSubject, resp.SubjectID)
	assert.Equal(t, emergency.ButtonReady, resp.State.Button)
	assert.False(t, resp.State.Active)
}

func TestOpenSession_InvalidToken(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "POST", "/api/v1/device/session", jsonBody(t, SessionRequest{Token: "garbage"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOpenSession_MissingToken(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "POST", "/api/v1/device/session", bytes.NewBufferString(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
}

func TestDeviceRoutes_RequireToken(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/device/status", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(f.router, "GET", "/api/v1/device/status", nil, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeviceStatus_NoSession(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/device/status", nil, f.deviceAuth)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHold_StartAndRelease(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	f.openSession(t, completeProfile())

	// Действие
	w := makeRequest(f.router, "POST", "/api/v1/device/hold/start", nil, f.deviceAuth)

	// Проверки
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var state emergency.ViewState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, emergency.ButtonHolding, state.Button)
	assert.Equal(t, 3, state.RemainingSeconds)

	// Повторное нажатие во время удержания
	w = makeRequest(f.router, "POST", "/api/v1/device/hold/start", nil, f.deviceAuth)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = makeRequest(f.router, "POST", "/api/v1/device/hold/release", nil, f.deviceAuth)
	require.Equal(t, http.StatusOK, w.Code)
	var released ReleaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &released))
	assert.True(t, released.Cancelled)
	assert.Equal(t, emergency.ButtonReady, released.State.Button)
}

func TestHold_IncompleteProfile(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	profile := completeProfile()
	profile.EmergencyContactPhone = ""
	f.openSession(t, profile)

	// Действие
	w := makeRequest(f.router, "POST", "/api/v1/device/hold/start", nil, f.deviceAuth)

	// Проверки
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ICEphone")
}

func TestStatus_ReturnsState(t *testing.T) {
	f := newTestHandler(t)
	f.openSession(t, completeProfile())

	w := makeRequest(f.router, "GET", "/api/v1/device/status", nil, f.deviceAuth)

	require.Equal(t, http.StatusOK, w.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, emergency.ButtonReady, resp.State.Button)
	assert.Nil(t, resp.Notice)
}

func TestUpdateLocation(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	f.openSession(t, completeProfile())
	lat, long := 51.5074, -0.1278

	// Действие
	w := makeRequest(f.router, "POST", "/api/v1/device/location", jsonBody(t, LocationRequest{Lat: &lat, Long: &long}), f.deviceAuth)

	// Проверки
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = makeRequest(f.router, "GET", "/api/v1/device/status", nil, f.deviceAuth)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.State.UserLocation)
	assert.Equal(t, models.Location{Lat: lat, Long: long}, *resp.State.UserLocation)

	w = makeRequest(f.router, "POST", "/api/v1/device/location", jsonBody(t, LocationRequest{PermissionDenied: true}), f.deviceAuth)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateLocation_Invalid(t *testing.T) {
	f := newTestHandler(t)
	lat := 120.0

	w := makeRequest(f.router, "POST", "/api/v1/device/location", jsonBody(t, LocationRequest{Lat: &lat, Long: &lat}), f.deviceAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(f.router, "POST", "/api/v1/device/location", bytes.NewBufferString(`{}`), f.deviceAuth)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lat and long are required")
}

func TestCloseSession(t *testing.T) {
	f := newTestHandler(t)
	f.openSession(t, completeProfile())

	w := makeRequest(f.router, "DELETE", "/api/v1/device/session", nil, f.deviceAuth)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = makeRequest(f.router, "DELETE", "/api/v1/device/session", nil, f.deviceAuth)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProfile(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	profile := completeProfile()
	profile.HomeAddress = ""

	// Ожидания
	f.profiles.EXPECT().GetProfile(gomock.Any(), testSubject).Return(profile, nil).Times(1)

	// Действие
	w := makeRequest(f.router, "GET", "/api/v1/device/profile", nil, f.deviceAuth)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Jane", resp.Profile.FirstName)
	assert.Equal(t, []string{"homeaddress"}, resp.MissingFields)
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newTestHandler(t)

	f.profiles.EXPECT().GetProfile(gomock.Any(), testSubject).Return(nil, nil).Times(1)

	w := makeRequest(f.router, "GET", "/api/v1/device/profile", nil, f.deviceAuth)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveProfile_UsesTokenSubject(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	req := ProfileRequest{FirstName: " Jane ", LastName: "Doe", Phone: "07700 900123"}

	// Ожидания
	f.profiles.EXPECT().
		SaveProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *models.ProfileSnapshot) (*models.ProfileSnapshot, error) {
			assert.Equal(t, testSubject, p.SubjectID)
			assert.Equal(t, "Jane", p.FirstName)
			saved := *p
			saved.Phone = "+447700900123"
			return &saved, nil
		}).Times(1)

	// Действие
	w := makeRequest(f.router, "PUT", "/api/v1/device/profile", jsonBody(t, req), f.deviceAuth)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "+447700900123", resp.Profile.Phone)
	assert.Contains(t, resp.MissingFields, "dob")
}

func TestSaveProfile_InvalidFormat(t *testing.T) {
	f := newTestHandler(t)

	f.profiles.EXPECT().
		SaveProfile(gomock.Any(), gomock.Any()).
		Return(nil, &emergency.ValidationError{Fields: []string{"phoneNumber"}, Reason: "invalid format"}).
		Times(1)

	w := makeRequest(f.router, "PUT", "/api/v1/device/profile", jsonBody(t, ProfileRequest{Phone: "12"}), f.deviceAuth)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "phoneNumber")
}

func TestSaveProfile_InvalidEmail(t *testing.T) {
	f := newTestHandler(t)

	f.profiles.EXPECT().SaveProfile(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(f.router, "PUT", "/api/v1/device/profile", jsonBody(t, ProfileRequest{Email: "not-an-email"}), f.deviceAuth)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProfile(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	deleted := false

	// Ожидания
	f.profiles.EXPECT().DeleteProfile(gomock.Any(), testSubject).
		DoAndReturn(func(context.Context, string) error {
			if deleted {
				return fmt.Errorf("service: %w: %s", service.ErrProfileNotFound, testSubject)
			}
			deleted = true
			return nil
		}).Times(2)

	// Действие
	first := makeRequest(f.router, "DELETE", "/api/v1/device/profile", nil, f.deviceAuth)
	second := makeRequest(f.router, "DELETE", "/api/v1/device/profile", nil, f.deviceAuth)

	// Проверки
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.Contains(t, second.Body.String(), "profile not found")
}

func TestDeleteProfile_StatusRequiresProfile(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	current := completeProfile()
	f.openSessionWith(t, func() *models.ProfileSnapshot { return current })

	w := makeRequest(f.router, "GET", "/api/v1/device/status", nil, f.deviceAuth)
	var before StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))
	require.Equal(t, emergency.ButtonReady, before.State.Button)

	// Ожидания
	f.profiles.EXPECT().DeleteProfile(gomock.Any(), testSubject).
		DoAndReturn(func(context.Context, string) error {
			current = nil
			return nil
		}).Times(1)

	// Действие
	w = makeRequest(f.router, "DELETE", "/api/v1/device/profile", nil, f.deviceAuth)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = makeRequest(f.router, "GET", "/api/v1/device/status", nil, f.deviceAuth)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var after StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.Equal(t, emergency.ButtonProfileRequired, after.State.Button)
}

func TestDeleteProfile_InternalError(t *testing.T) {
	f := newTestHandler(t)

	f.profiles.EXPECT().DeleteProfile(gomock.Any(), testSubject).Return(errors.New("db down")).Times(1)

	w := makeRequest(f.router, "DELETE", "/api/v1/device/profile", nil, f.deviceAuth)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDeviceRateLimit(t *testing.T) {
	f := newTestHandler(t, func(cfg *config.Config) {
		cfg.DeviceRateLimitRPS = 0.001
		cfg.DeviceRateLimitBurst = 1
	})

	f.profiles.EXPECT().GetProfile(gomock.Any(), testSubject).Return(nil, nil).Times(1)

	w := makeRequest(f.router, "GET", "/api/v1/device/profile", nil, f.deviceAuth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = makeRequest(f.router, "GET", "/api/v1/device/profile", nil, f.deviceAuth)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func newRecord(status models.Status) *models.EmergencyRecord {
	now := time.Now().UTC()
	return &models.EmergencyRecord{
		ID:             uuid.New(),
		IncidentNumber: "SOS-1",
		SubjectID:      testSubject,
		Status:         status,
		Location:       models.Location{Lat: 51.5074, Long: -0.1278},
		Profile:        *completeProfile(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestListEmergencies_BySubject(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	rec := newRecord(models.StatusOpen)

	// Ожидания
	f.emergency.EXPECT().
		List(gomock.Any(), models.EmergencyFilter{SubjectID: testSubject, Statuses: []models.Status{models.StatusOpen, models.StatusAssigned}}).
		Return([]*models.EmergencyRecord{rec}, nil).
		Times(1)

	// Действие
	w := makeRequest(f.router, "GET", "/api/v1/emergencies?subject_id="+testSubject+"&status=open,ASSIGNED", nil, apiKeyHeader)

	// Проверки
	require.Equal(t, http.StatusOK, w.Code)
	var resp []EmergencyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, rec.ID, resp[0].ID)
	assert.Equal(t, "OPEN", resp[0].Status)
}

func TestListEmergencies_Recent(t *testing.T) {
	f := newTestHandler(t)

	f.emergency.EXPECT().ListRecent(gomock.Any(), []models.Status(nil), 2, 5).Return([]*models.EmergencyRecord{}, nil).Times(1)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies?page=2&pageSize=5", nil, apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListEmergencies_InvalidStatus(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies?status=CLOSED", nil, apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEmergencies_Unauthorized(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")

	w = makeRequest(f.router, "GET", "/api/v1/emergencies", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetEmergency(t *testing.T) {
	f := newTestHandler(t)
	rec := newRecord(models.StatusAssigned)
	rec.ResponderLocation = &models.Location{Lat: 51.5, Long: -0.12}

	f.emergency.EXPECT().Get(gomock.Any(), rec.ID).Return(rec, nil).Times(1)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies/"+rec.ID.String(), nil, map[string]string{"Authorization": "Bearer test-api-key"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp EmergencyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.ResponderLocation)
	assert.Equal(t, 51.5, resp.ResponderLocation.Lat)
}

func TestGetEmergency_NotFound(t *testing.T) {
	f := newTestHandler(t)
	id := uuid.New()

	f.emergency.EXPECT().Get(gomock.Any(), id).Return(nil, service.ErrNotFound).Times(1)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies/"+id.String(), nil, apiKeyHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEmergency_InvalidID(t *testing.T) {
	f := newTestHandler(t)

	w := makeRequest(f.router, "GET", "/api/v1/emergencies/not-a-uuid", nil, apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEmergency_Success(t *testing.T) {
	// Подготовка
	f := newTestHandler(t)
	rec := newRecord(models.StatusAssigned)
	status := "ASSIGNED"
	req := UpdateEmergencyRequest{Status: &status, ResponderLocation: &LocationDTO{Lat: 51.5, Long: -0.12}}

	// Ожидания
	f.emergency.EXPECT().
		Update(gomock.Any(), rec.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch models.EmergencyPatch) (*models.EmergencyRecord, error) {
			require.NotNil(t, patch.Status)
			assert.Equal(t, models.StatusAssigned, *patch.Status)
			require.NotNil(t, patch.ResponderLocation)
			assert.Equal(t, -0.12, patch.ResponderLocation.Long)
			return rec, nil
		}).Times(1)

	// Действие
	w := makeRequest(f.router, "PATCH", "/api/v1/emergencies/"+rec.ID.String(), jsonBody(t, req), apiKeyHeader)

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateEmergency_Errors(t *testing.T) {
	status := "RESOLVED"
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: service.ErrNotFound, expected: http.StatusNotFound},
		{name: "finalized", err: service.ErrFinalized, expected: http.StatusConflict},
		{name: "backend failure", err: errors.New("db down"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestHandler(t)
			id := uuid.New()

			f.emergency.EXPECT().Update(gomock.Any(), id, gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(f.router, "PATCH", "/api/v1/emergencies/"+id.String(), jsonBody(t, UpdateEmergencyRequest{Status: &status}), apiKeyHeader)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestUpdateEmergency_Validation(t *testing.T) {
	f := newTestHandler(t)
	id := uuid.New()
	bad := "CLOSED"

	f.emergency.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(f.router, "PATCH", "/api/v1/emergencies/"+id.String(), jsonBody(t, UpdateEmergencyRequest{Status: &bad}), apiKeyHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = makeRequest(f.router, "PATCH", "/api/v1/emergencies/"+id.String(), bytes.NewBufferString(`{}`), apiKeyHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nothing to update")

	w = makeRequest(f.router, "PATCH", "/api/v1/emergencies/"+id.String(), jsonBody(t, UpdateEmergencyRequest{ResponderLocation: &LocationDTO{Lat: 95, Long: 0}}), apiKeyHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
