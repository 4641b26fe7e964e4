package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options - параметры подключения к брокеру
type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// NewClient создает клиент с автопереподключением и подключается к брокеру
func NewClient(opts Options, logger *logrus.Logger) (paho.Client, error) {
	log := logger.WithFields(logrus.Fields{
		"component": "mqtt",
		"broker":    opts.BrokerURL,
	})

	co := paho.NewClientOptions()
	co.AddBroker(opts.BrokerURL)
	// уникальный идентификатор, чтобы экземпляры сервиса не вытесняли друг друга
	co.SetClientID(fmt.Sprintf("%s-%s", opts.ClientID, uuid.New().String()[:8]))
	co.SetAutoReconnect(true)
	co.SetMaxReconnectInterval(30 * time.Second)
	co.SetKeepAlive(60 * time.Second)
	co.SetPingTimeout(10 * time.Second)
	co.SetCleanSession(true)
	co.SetOrderMatters(true)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}

	co.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})
	co.SetOnConnectHandler(func(_ paho.Client) {
		log.Info("Connected to MQTT broker")
	})
	co.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		log.Info("Reconnecting to MQTT broker")
	})

	client := paho.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return client, nil
}
