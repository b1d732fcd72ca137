package relay

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// MQTTPublisher is the part of mqtt.Client the relay needs
type MQTTPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTRelay publishes the control state as a retained message so a device
// that reconnects immediately receives the current commands.
type MQTTRelay struct {
	client  MQTTPublisher
	topic   string
	qos     byte
	timeout time.Duration
	gate    revisionGate
}

// NewMQTTRelay creates a relay publishing to topic
func NewMQTTRelay(client MQTTPublisher, topic string, qos byte, timeout time.Duration) *MQTTRelay {
	return &MQTTRelay{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: timeout,
	}
}

// PublishControl publishes c unless a newer revision was already published.
func (r *MQTTRelay) PublishControl(c models.ControlState) error {
	if !r.gate.admit(c.Revision) {
		return nil
	}

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal control state: %w", err)
	}

	token := r.client.Publish(r.topic, r.qos, true, payload)
	if !token.WaitTimeout(r.timeout) {
		return fmt.Errorf("publish to %s timed out after %v", r.topic, r.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.topic, err)
	}
	return nil
}

// ConnectMQTT opens a broker connection with automatic reconnects
func ConnectMQTT(cfg config.MQTTConfig) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			nuts.L.Warnf("[MQTTRelay] Connection lost: %v", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			nuts.L.Infof("[MQTTRelay] Connected to %s", cfg.Broker)
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	return client, nil
}
