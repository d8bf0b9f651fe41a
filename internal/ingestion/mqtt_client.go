package ingestion

import (
	"errors"
	"fmt"
	"sync"

	"drone-fire-monitor/internal/logger"
	pkgmqtt "drone-fire-monitor/pkg/mqtt"

	"go.uber.org/zap"
)

// MQTTIngestionConfig describes the topic and MQTT connection parameters.
type MQTTIngestionConfig struct {
	ClientConfig *pkgmqtt.Config
	Topic        string
	QoS          byte
}

// MQTTIngestionClient wires MQTT messages into the ingestion processor.
type MQTTIngestionClient struct {
	cfg       *MQTTIngestionConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu      sync.Mutex
	started bool
}

// NewMQTTIngestionClient builds a new MQTT client for ingestion.
func NewMQTTIngestionClient(cfg *MQTTIngestionConfig, processor *Processor) (*MQTTIngestionClient, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt ingestion config is not configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("no MQTT topic configured for ingestion")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &MQTTIngestionClient{
		cfg:       cfg,
		client:    pkgmqtt.NewClient(cfg.ClientConfig),
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the detection topic.
func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := c.client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.handleDetectionMessage); err != nil {
		c.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", c.cfg.Topic, err)
	}

	logger.Info("Listening for detection events over MQTT", zap.String("topic", c.cfg.Topic))
	c.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	if err := c.client.Unsubscribe(c.cfg.Topic); err != nil {
		logger.Warn("Failed to unsubscribe from MQTT topic", zap.String("topic", c.cfg.Topic), zap.Error(err))
	}

	c.client.Disconnect()
	c.started = false
}

// handleDetectionMessage decodes and validates a payload and hands it to the processor.
func (c *MQTTIngestionClient) handleDetectionMessage(topic string, payload []byte) {
	handleDetectionPayload(c.processor, topic, payload)
}

func handleDetectionPayload(processor *Processor, topic string, payload []byte) {
	msg, err := ParseDetectionMessage(topic, payload)
	if err != nil {
		logger.Warn("Invalid detection payload", zap.String("topic", topic), zap.Error(err))
		processor.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesReceived++
			m.MessagesFailed++
		})
		return
	}

	if err := ValidateDetectionMessage(msg); err != nil {
		logger.Warn("Rejected detection message", zap.String("topic", topic), zap.Error(err))
		processor.metrics.Update(func(m *MetricsSnapshot) {
			m.MessagesReceived++
			m.MessagesFailed++
		})
		return
	}

	if err := processor.Submit(msg); err != nil && !errors.Is(err, ErrBufferFull) {
		logger.Warn("Detection message not queued", zap.String("topic", topic), zap.Error(err))
	}
}
