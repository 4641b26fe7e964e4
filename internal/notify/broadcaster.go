package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/antonD24/ELDI/internal/models"
	"github.com/sirupsen/logrus"
)

type emergencyMessage struct {
	Event          string           `json:"event"`
	EmergencyID    string           `json:"emergency_id"`
	IncidentNumber string           `json:"incident_number,omitempty"`
	SubjectID      string           `json:"subject_id"`
	Status         models.Status    `json:"status"`
	Location       models.Location  `json:"location"`
	Responder      *models.Location `json:"responder_location,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Broadcaster рассылает события вызовов диспетчерам по MQTT
type Broadcaster struct {
	client Publisher
	logger *logrus.Logger
}

func NewBroadcaster(client Publisher, logger *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		client: client,
		logger: logger,
	}
}

// Broadcast публикует событие в sos/emergencies/<event> и ждет подтверждения брокера
func (b *Broadcaster) Broadcast(ctx context.Context, kind models.EventKind, rec *models.EmergencyRecord) error {
	data, err := marshal(emergencyMessage{
		Event:          string(kind),
		EmergencyID:    rec.ID.String(),
		IncidentNumber: rec.IncidentNumber,
		SubjectID:      rec.SubjectID,
		Status:         rec.Status,
		Location:       rec.Location,
		Responder:      rec.ResponderLocation,
		UpdatedAt:      rec.UpdatedAt,
	})
	if err != nil {
		return err
	}

	topic := EmergencyTopic(string(kind))
	token := b.client.Publish(topic, qos, false, data)

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s failed: %w", topic, err)
	}

	b.logger.WithFields(logrus.Fields{
		"component":    "notify",
		"topic":        topic,
		"emergency_id": rec.ID,
	}).Debug("Emergency event broadcast")
	return nil
}
