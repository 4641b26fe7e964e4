package emergency_test

import (
	"io"
	"testing"

	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/antonD24/ELDI/internal/emergency/mocks"
	"github.com/antonD24/ELDI/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"go.uber.org/mock/gomock"
)

const testSubject = "AB123456C"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Отключаем вывод логов в тестах
	return logger
}

func validProfile() *models.ProfileSnapshot {
	return &models.ProfileSnapshot{
		FirstName:             "Jane",
		LastName:              "Doe",
		DOB:                   "1990-04-12",
		Phone:                 "07700 900123",
		EmergencyContactName:  "John Doe",
		EmergencyContactPhone: "07700 900456",
		Relationship:          "spouse",
		SubjectID:             testSubject,
		Email:                 "jane@example.com",
		HomeAddress:           "1 High Street, London",
	}
}

func testLocation() *models.Location {
	return &models.Location{Lat: 51.5074, Long: -0.1278}
}

type submitterFixture struct {
	store     *emergency.Store
	submitter *emergency.Submitter
	data      *mocks.MockDataService
	auth      *mocks.MockAuthProvider
	clock     *clockwork.FakeClock
}

// newSubmitterFixture - вспомогательная функция для создания отправителя с моками
func newSubmitterFixture(t *testing.T) *submitterFixture {
	ctrl := gomock.NewController(t)
	data := mocks.NewMockDataService(ctrl)
	auth := mocks.NewMockAuthProvider(ctrl)
	logger := testLogger()
	fc := clockwork.NewFakeClock()

	store := emergency.NewStore()
	reconciler := emergency.NewReconciler(data, store, logger)
	guard := emergency.NewGuard(store, reconciler, logger)
	submitter := emergency.NewSubmitter(data, auth, store, guard, fc, logger)

	return &submitterFixture{
		store:     store,
		submitter: submitter,
		data:      data,
		auth:      auth,
		clock:     fc,
	}
}
