package notify

import (
	"github.com/antonD24/ELDI/internal/emergency"
	"github.com/sirupsen/logrus"
)

type hapticMessage struct {
	Kind  string `json:"kind"`
	Level string `json:"level,omitempty"`
}

type navigateMessage struct {
	Route string `json:"route"`
}

// DeviceChannel передает устройству тактильные импульсы и переходы между экранами.
// Публикация не ждет подтверждения брокера: импульсы не должны задерживать тик удержания.
type DeviceChannel struct {
	client    Publisher
	subjectID string
	logger    *logrus.Logger
}

// NewDeviceChannel создает канал устройства. При nil-клиенте сообщения только логируются.
func NewDeviceChannel(client Publisher, subjectID string, logger *logrus.Logger) *DeviceChannel {
	return &DeviceChannel{
		client:    client,
		subjectID: subjectID,
		logger:    logger,
	}
}

// Impact отправляет импульс заданной интенсивности
func (d *DeviceChannel) Impact(level emergency.HapticLevel) error {
	return d.publish(DeviceHapticTopic(d.subjectID), hapticMessage{Kind: "impact", Level: level.String()})
}

// Success отправляет уведомление об успешном завершении удержания
func (d *DeviceChannel) Success() error {
	return d.publish(DeviceHapticTopic(d.subjectID), hapticMessage{Kind: "success"})
}

// NavigateTo просит устройство открыть экран
func (d *DeviceChannel) NavigateTo(route string) {
	if err := d.publish(DeviceNavigateTopic(d.subjectID), navigateMessage{Route: route}); err != nil {
		d.logger.WithError(err).WithField("route", route).Warn("Failed to send navigation hint")
	}
}

func (d *DeviceChannel) publish(topic string, payload any) error {
	data, err := marshal(payload)
	if err != nil {
		return err
	}
	if d.client == nil {
		d.logger.WithFields(logrus.Fields{
			"component": "notify",
			"topic":     topic,
		}).Debug("MQTT disabled, dropping device message")
		return nil
	}
	d.client.Publish(topic, qos, false, data)
	return nil
}
