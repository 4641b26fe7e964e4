package device

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/antonD24/ELDI/internal/auth"
	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/emergency/mocks"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type registryFixture struct {
	registry *Registry
	data     *mocks.MockDataService
	profiles *mocks.MockProfileSource
	verifier *auth.TokenVerifier
	ctrl     *gomock.Controller
}

func newTestRegistry(t *testing.T) *registryFixture {
	ctrl := gomock.NewController(t)
	data := mocks.NewMockDataService(ctrl)
	profiles := mocks.NewMockProfileSource(ctrl)

	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах

	verifier := auth.NewTokenVerifier("secret", "", nil)
	r := NewRegistry(context.Background(), Deps{
		Data:           data,
		Profiles:       profiles,
		Verifier:       verifier,
		Clock:          clockwork.NewFakeClock(),
		HoldCfg:        emergency.DefaultHoldConfig(),
		LocationMaxAge: 30 * time.Second,
		Logger:         logger,
	})
	return &registryFixture{registry: r, data: data, profiles: profiles, verifier: verifier, ctrl: ctrl}
}

func TestRegistry_OpenGetClose(t *testing.T) {
	// Подготовка
	f := newTestRegistry(t)
	r, data := f.registry, f.data
	token, err := f.verifier.Issue("AB123456C", time.Hour)
	require.NoError(t, err)
	sub := mocks.NewMockSubscription(f.ctrl)

	// Ожидания: одна пара подписок на субъекта
	data.EXPECT().SubscribeOnCreate(gomock.Any(), models.EmergencyFilter{SubjectID: "AB123456C"}, gomock.Any()).Return(sub, nil).Times(1)
	data.EXPECT().SubscribeOnUpdate(gomock.Any(), models.EmergencyFilter{SubjectID: "AB123456C"}, gomock.Any()).Return(sub, nil).Times(1)
	data.EXPECT().List(gomock.Any(), models.ActiveFilter("AB123456C")).Return(nil, nil).Times(1)

	// Действие
	d, err := r.Open(token)
	require.NoError(t, err)
	again, err := r.Open(token)
	require.NoError(t, err)

	// Проверки
	assert.Same(t, d, again)
	assert.Equal(t, "AB123456C", d.SubjectID)
	got, err := r.Get("AB123456C")
	require.NoError(t, err)
	assert.Same(t, d, got)

	subject, err := d.Session.CurrentSubject(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AB123456C", subject)

	// Ожидания
	sub.EXPECT().Unsubscribe().Return(nil).Times(2)

	// Действие
	assert.True(t, r.Close("AB123456C"))

	// Проверки
	_, err = r.Get("AB123456C")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, r.Close("AB123456C"))
}

func TestRegistry_OpenInvalidToken(t *testing.T) {
	r := newTestRegistry(t).registry

	_, err := r.Open("not-a-token")

	assert.ErrorIs(t, err, emergency.ErrAuthentication)
	_, err = r.Get("AB123456C")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDevice_LocationFeedsDistance(t *testing.T) {
	// Подготовка
	f := newTestRegistry(t)
	r, data := f.registry, f.data
	token, err := f.verifier.Issue("AB123456C", time.Hour)
	require.NoError(t, err)
	sub := mocks.NewMockSubscription(f.ctrl)
	f.profiles.EXPECT().GetProfile(gomock.Any(), "AB123456C").Return(nil, nil).AnyTimes()
	sub.EXPECT().Unsubscribe().Return(nil).AnyTimes()

	var onUpdate emergency.EventHandler
	data.EXPECT().SubscribeOnCreate(gomock.Any(), gomock.Any(), gomock.Any()).Return(sub, nil).Times(1)
	data.EXPECT().SubscribeOnUpdate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.EmergencyFilter, h emergency.EventHandler) (emergency.Subscription, error) {
			onUpdate = h
			return sub, nil
		}).Times(1)
	data.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	d, err := r.Open(token)
	require.NoError(t, err)
	t.Cleanup(r.CloseAll)

	// Действие
	require.NoError(t, d.UpdateLocation(models.Location{Lat: 51.5074, Long: -0.1278}))
	onUpdate(&models.EmergencyRecord{
		SubjectID:         "AB123456C",
		Status:            models.StatusInProgress,
		ResponderLocation: &models.Location{Lat: 51.5155, Long: -0.1278},
	})

	// Проверки
	view := d.Controller.State(context.Background())
	assert.Equal(t, emergency.ButtonActive, view.Button)
	assert.Equal(t, "901 m", view.Distance)

	// Действие
	d.DenyLocation()

	// Проверки
	assert.Empty(t, d.Controller.State(context.Background()).Distance)
}
