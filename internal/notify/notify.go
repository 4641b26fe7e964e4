package notify

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	// QoS 1: сообщение доставляется хотя бы один раз
	qos            = byte(1)
	publishTimeout = 3 * time.Second
)

// Publisher - часть MQTT-клиента, нужная для публикаций
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

func DeviceHapticTopic(subjectID string) string {
	return fmt.Sprintf("sos/device/%s/haptic", subjectID)
}

func DeviceNavigateTopic(subjectID string) string {
	return fmt.Sprintf("sos/device/%s/navigate", subjectID)
}

func EmergencyTopic(event string) string {
	return fmt.Sprintf("sos/emergencies/%s", event)
}

func marshal(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mqtt payload: %w", err)
	}
	return data, nil
}
