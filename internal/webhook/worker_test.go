package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antonD24/ELDI/internal/config"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, url string) *WebhookWorker {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	return NewWebhookWorker(nil, logger, cfg)
}

func testEvent() (WebhookEvent, string) {
	rec := &models.EmergencyRecord{
		ID:        uuid.New(),
		SubjectID: "AB123456C",
		Status:    models.StatusCreated,
		Location:  models.Location{Lat: 51.5, Long: -0.12},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	event := NewEmergencyEvent("created", rec)
	payload, _ := json.Marshal(event)
	return event, string(payload)
}

func TestDeliver_SignsPayload(t *testing.T) {
	event, payload := testEvent()
	var gotSignature, gotEvent string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Webhook-Signature")
		gotEvent = r.Header.Get("X-Webhook-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	require.True(t, w.Deliver(context.Background(), event, payload))

	assert.Equal(t, generateHMACSHA256(payload, "secret"), gotSignature)
	assert.Equal(t, "created", gotEvent)
	assert.JSONEq(t, payload, string(gotBody))
}

func TestDeliver_RetriesThenSucceeds(t *testing.T) {
	event, payload := testEvent()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	assert.True(t, w.Deliver(context.Background(), event, payload))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliver_GivesUp(t *testing.T) {
	event, payload := testEvent()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := newTestWorker(t, srv.URL)
	assert.False(t, w.Deliver(context.Background(), event, payload))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliver_NoURL(t *testing.T) {
	event, payload := testEvent()
	w := newTestWorker(t, "")
	assert.False(t, w.Deliver(context.Background(), event, payload))
}

func TestNewEmergencyEvent(t *testing.T) {
	event, _ := testEvent()
	assert.Equal(t, "created", event.Event)
	assert.Equal(t, models.StatusCreated, event.Status)
	assert.Equal(t, "AB123456C", event.SubjectID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), event.Timestamp)
}
