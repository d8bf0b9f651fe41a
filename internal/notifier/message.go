// Package notifier turns high-confidence detections into push alerts.
package notifier

import (
	"fmt"
	"math"
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
)

const (
	RiskDanger  = "danger"
	RiskCaution = "caution"
	RiskSafe    = "safe"
	RiskUnknown = "unknown"
)

// Alert is the push message published for one detection.
type Alert struct {
	To         []string  `json:"to"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Sound      string    `json:"sound"`
	DroneName  string    `json:"drone_name"`
	DroneID    string    `json:"drone_id"`
	Collection string    `json:"collection"`
	EventID    int64     `json:"event_id"`
	EventTime  time.Time `json:"event_time"`
	Confidence float64   `json:"confidence"`
	RiskLevel  *float64  `json:"risk_level,omitempty"`
	ImagePath  string    `json:"image_path,omitempty"`
}

// RiskText classifies a risk level score.
func RiskText(riskLevel *float64) string {
	switch {
	case riskLevel == nil:
		return RiskUnknown
	case *riskLevel >= 80:
		return RiskDanger
	case *riskLevel >= 50:
		return RiskCaution
	default:
		return RiskSafe
	}
}

func BuildAlert(e *domainDetection.Event, tokens []string) *Alert {
	droneName := e.DroneName
	if droneName == "" {
		droneName = e.Collection
	}

	return &Alert{
		To:         tokens,
		Title:      fmt.Sprintf("[%s] smoke detected", droneName),
		Body:       fmt.Sprintf("Confidence: %d%%\nRisk: %s", int(math.Round(e.Confidence*100)), RiskText(e.RiskLevel)),
		Sound:      "default",
		DroneName:  droneName,
		DroneID:    e.DroneID,
		Collection: e.Collection,
		EventID:    e.ID,
		EventTime:  e.EventTime,
		Confidence: e.Confidence,
		RiskLevel:  e.RiskLevel,
		ImagePath:  e.ImagePath,
	}
}
