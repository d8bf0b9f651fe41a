package ingestion

import (
	"encoding/json"
	"strings"

	"drone-fire-monitor/internal/usecase/detection"
)

// DetectionMessage is the MQTT payload published by edge pipelines. It mirrors the
// HTTP ingestion body; drone_name may be omitted when the topic carries it.
type DetectionMessage struct {
	DroneName   string   `json:"drone_name"`
	Confidence  *float64 `json:"confidence"`
	ImagePath   string   `json:"image_path"`
	GPSLat      *float64 `json:"gps_lat"`
	GPSLon      *float64 `json:"gps_lon"`
	RiskLevel   *float64 `json:"risk_level"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`

	topic string
}

// ParseDetectionMessage decodes a payload received on topic.
func ParseDetectionMessage(topic string, payload []byte) (*DetectionMessage, error) {
	var msg DetectionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	msg.topic = topic
	if strings.TrimSpace(msg.DroneName) == "" {
		msg.DroneName = DroneNameFromTopic(topic)
	}
	return &msg, nil
}

// DroneNameFromTopic extracts <name> from topics shaped like drones/<name>/events.
func DroneNameFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// ToIngestRequest converts the message into the ingestion use case input.
func (m *DetectionMessage) ToIngestRequest() *detection.IngestRequest {
	return &detection.IngestRequest{
		DroneName:   m.DroneName,
		Confidence:  m.Confidence,
		ImagePath:   m.ImagePath,
		GPSLat:      m.GPSLat,
		GPSLon:      m.GPSLon,
		RiskLevel:   m.RiskLevel,
		Temperature: m.Temperature,
		Humidity:    m.Humidity,
		WindSpeed:   m.WindSpeed,
	}
}
