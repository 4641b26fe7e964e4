package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/antonD24/ELDI/internal/service/mocks"
	"github.com/antonD24/ELDI/internal/webhook"
	webhook_mocks "github.com/antonD24/ELDI/internal/webhook/mocks"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type emergencyMocks struct {
	repo        *mocks.MockEmergencyRepository
	bus         *mocks.MockEventBus
	webhook     *webhook_mocks.MockWebhookPublisher
	broadcaster *mocks.MockBroadcaster
	clock       *clockwork.FakeClock
}

// newTestEmergencyService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestEmergencyService(t *testing.T) (*emergencyService, *emergencyMocks) {
	ctrl := gomock.NewController(t)
	m := &emergencyMocks{
		repo:        mocks.NewMockEmergencyRepository(ctrl),
		bus:         mocks.NewMockEventBus(ctrl),
		webhook:     webhook_mocks.NewMockWebhookPublisher(ctrl),
		broadcaster: mocks.NewMockBroadcaster(ctrl),
		clock:       clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewEmergencyService(m.repo, m.bus, m.webhook, m.broadcaster, node, m.clock, logger)
	return svc.(*emergencyService), m
}

func newRecord() *models.EmergencyRecord {
	return &models.EmergencyRecord{
		SubjectID: "AB123456C",
		Content:   "Emergency alert! I need immediate assistance!",
		Location:  models.Location{Lat: 51.5, Long: -0.12},
	}
}

func TestCreate_Success(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	rec := newRecord()

	// Ожидания
	m.repo.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, r *models.EmergencyRecord) error {
			assert.NotEqual(t, uuid.Nil, r.ID)
			assert.Equal(t, models.StatusCreated, r.Status)
			assert.Regexp(t, `^SOS-\d+$`, r.IncidentNumber)
			assert.Equal(t, m.clock.Now(), r.CreatedAt)
			return nil
		}).Times(1)
	m.bus.EXPECT().Publish(ctx, models.EventCreated, rec).Return(nil).Times(1)
	m.webhook.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, e webhook.WebhookEvent) error {
			assert.Equal(t, "created", e.Event)
			assert.Equal(t, rec.SubjectID, e.SubjectID)
			return nil
		}).Times(1)
	m.broadcaster.EXPECT().Broadcast(ctx, models.EventCreated, rec).Return(nil).Times(1)

	// Действие
	created, err := service.Create(ctx, rec)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, rec, created)
}

func TestCreate_Duplicate(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()

	// Ожидания: событие не рассылается
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(ErrDuplicate).Times(1)
	m.bus.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.webhook.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.Create(ctx, newRecord())

	// Проверки
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCreate_RejectsTerminalStatus(t *testing.T) {
	// Подготовка
	service, _ := newTestEmergencyService(t)
	rec := newRecord()
	rec.Status = models.StatusResolved

	// Действие
	_, err := service.Create(context.Background(), rec)

	// Проверки
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreate_DispatchFailureIsNotFatal(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()

	// Ожидания
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.bus.EXPECT().Publish(ctx, models.EventCreated, gomock.Any()).Return(errors.New("redis down")).Times(1)
	m.webhook.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down")).Times(1)
	m.broadcaster.EXPECT().Broadcast(ctx, models.EventCreated, gomock.Any()).Return(errors.New("not connected")).Times(1)

	// Действие
	created, err := service.Create(ctx, newRecord())

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestUpdate_Success(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	id := uuid.New()
	status := models.StatusAssigned
	patch := models.EmergencyPatch{Status: &status}
	updated := &models.EmergencyRecord{ID: id, Status: models.StatusAssigned}

	// Ожидания
	m.repo.EXPECT().Update(ctx, id, patch).Return(updated, nil).Times(1)
	m.bus.EXPECT().Publish(ctx, models.EventUpdated, updated).Return(nil).Times(1)
	m.webhook.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	m.broadcaster.EXPECT().Broadcast(ctx, models.EventUpdated, updated).Return(nil).Times(1)

	// Действие
	rec, err := service.Update(ctx, id, patch)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, updated, rec)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	// Подготовка
	service, _ := newTestEmergencyService(t)
	status := models.Status("CLOSED")

	// Действие
	_, err := service.Update(context.Background(), uuid.New(), models.EmergencyPatch{Status: &status})

	// Проверки
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdate_Finalized(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	id := uuid.New()
	status := models.StatusOpen

	// Ожидания: отказ приходит из того же UPDATE, события не рассылаются
	m.repo.EXPECT().
		Update(ctx, id, models.EmergencyPatch{Status: &status}).
		Return(nil, fmt.Errorf("emergency with id %s is RESOLVED: %w", id, ErrFinalized)).
		Times(1)
	m.bus.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.webhook.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.Update(ctx, id, models.EmergencyPatch{Status: &status})

	// Проверки
	require.ErrorIs(t, err, ErrFinalized)
}

func TestUpdate_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	id := uuid.New()

	// Ожидания
	m.repo.EXPECT().Update(ctx, id, models.EmergencyPatch{}).Return(nil, ErrNotFound).Times(1)

	// Действие
	_, err := service.Update(ctx, id, models.EmergencyPatch{})

	// Проверки
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGet_Error(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	id := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, id).Return(nil, ErrNotFound).Times(1)

	// Действие
	_, err := service.Get(ctx, id)

	// Проверки
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "service: could not get emergency")
}

func TestListRecent_Pagination(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()

	// Ожидания: некорректные параметры заменяются значениями по умолчанию
	m.repo.EXPECT().ListRecent(ctx, []models.Status(nil), 1, 20).Return([]*models.EmergencyRecord{}, nil).Times(1)

	// Действие
	records, err := service.ListRecent(ctx, nil, 0, 1000)

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubscribeOnUpdate_Error(t *testing.T) {
	// Подготовка
	service, m := newTestEmergencyService(t)
	ctx := context.Background()
	filter := models.EmergencyFilter{SubjectID: "AB123456C"}

	// Ожидания
	m.bus.EXPECT().Subscribe(ctx, models.EventUpdated, filter, gomock.Any()).Return(nil, errors.New("redis down")).Times(1)

	// Действие
	sub, err := service.SubscribeOnUpdate(ctx, filter, func(*models.EmergencyRecord) {})

	// Проверки
	require.Error(t, err)
	assert.Nil(t, sub)
}
