package detection

import (
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
)

type IngestRequest struct {
	// DroneID is the owner named by verified credentials, empty when ingest is unauthenticated.
	DroneID     string   `json:"-"`
	DroneName   string   `json:"drone_name" validate:"drone_name"`
	Confidence  *float64 `json:"confidence" validate:"required,min=0,max=1"`
	ImagePath   string   `json:"image_path" validate:"max=2048"`
	GPSLat      *float64 `json:"gps_lat" validate:"omitempty,latitude"`
	GPSLon      *float64 `json:"gps_lon" validate:"omitempty,longitude"`
	RiskLevel   *float64 `json:"risk_level" validate:"omitempty,min=0,max=100"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity" validate:"omitempty,min=0,max=100"`
	WindSpeed   *float64 `json:"wind_speed" validate:"omitempty,min=0"`
}

type HistoryQuery struct {
	Date  string `form:"date"`
	Since string `form:"since"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type IngestResponse struct {
	EventID    int64     `json:"event_id"`
	DroneID    string    `json:"drone_id"`
	Collection string    `json:"collection"`
	EventTime  time.Time `json:"event_time"`
}

type EventResponse struct {
	ID          int64     `json:"id"`
	DroneID     string    `json:"drone_id"`
	EventTime   time.Time `json:"event_time"`
	Confidence  float64   `json:"confidence"`
	ImagePath   string    `json:"image_path"`
	GPSLat      *float64  `json:"gps_lat"`
	GPSLon      *float64  `json:"gps_lon"`
	RiskLevel   *float64  `json:"risk_level"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	WindSpeed   *float64  `json:"wind_speed"`
}

type LivePhotosResponse struct {
	DroneName   string           `json:"drone_name"`
	ConnectTime *time.Time       `json:"connect_time"`
	Photos      []*EventResponse `json:"photos"`
}

// ToEventResponse maps an event and replaces its image path with the client-facing one.
func ToEventResponse(e *domainDetection.Event, rewrite func(string) string) *EventResponse {
	imagePath := e.ImagePath
	if rewrite != nil {
		imagePath = rewrite(imagePath)
	}
	return &EventResponse{
		ID:          e.ID,
		DroneID:     e.DroneID,
		EventTime:   e.EventTime,
		Confidence:  e.Confidence,
		ImagePath:   imagePath,
		GPSLat:      e.GPSLat,
		GPSLon:      e.GPSLon,
		RiskLevel:   e.RiskLevel,
		Temperature: e.Temperature,
		Humidity:    e.Humidity,
		WindSpeed:   e.WindSpeed,
	}
}
