package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/common"
)

const (
	mqttQoS            byte = 1
	mqttConnectTimeout      = 10 * time.Second
	mqttPublishTimeout      = 5 * time.Second
)

var ErrMQTTPublish = errors.New("mqtt publish failed")

type MQTTConfig struct {
	Broker    string
	ClientID  string
	TopicRoot string
}

// mqttClient is the slice of pahomqtt.Client used here.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher writes each event to <root>/cameras/<camera id>/<event type>.
type MQTTPublisher struct {
	client    mqttClient
	topicRoot string
	logger    *zap.Logger
}

func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "iot-camera-service"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)

	logger := common.GetLoggerWith(common.LoggerNameEvents, zap.String("sink", "mqtt"))
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connecting to mqtt broker %s: timeout after %v", cfg.Broker, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", cfg.Broker, err)
	}

	return newMQTTPublisher(client, cfg.TopicRoot), nil
}

func newMQTTPublisher(client mqttClient, topicRoot string) *MQTTPublisher {
	if topicRoot == "" {
		topicRoot = "iot"
	}
	return &MQTTPublisher{
		client:    client,
		topicRoot: strings.TrimSuffix(topicRoot, "/"),
		logger:    common.GetLoggerWith(common.LoggerNameEvents, zap.String("sink", "mqtt")),
	}
}

func (p *MQTTPublisher) Topic(event Event) string {
	return fmt.Sprintf("%s/cameras/%s/%s", p.topicRoot, event.CameraID, event.Type)
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Payload()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMQTTPublish, err)
	}

	topic := p.Topic(event)
	token := p.client.Publish(topic, mqttQoS, false, payload)

	select {
	case <-token.Done():
	case <-time.After(mqttPublishTimeout):
		return fmt.Errorf("%w: timeout after %v", ErrMQTTPublish, mqttPublishTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrMQTTPublish, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrMQTTPublish, err)
	}

	p.logger.Debug("Published event", zap.String("topic", topic))
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
