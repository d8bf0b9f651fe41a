package drone

import (
	"time"

	domainDrone "drone-fire-monitor/internal/domain/drone"
)

type RegisterRequest struct {
	DroneName string   `json:"drone_name" validate:"drone_name"`
	DroneLat  *float64 `json:"drone_lat" validate:"omitempty,latitude"`
	DroneLon  *float64 `json:"drone_lon" validate:"omitempty,longitude"`
}

type SetVideoURLRequest struct {
	VideoURL string `json:"video_url" validate:"required,stream_url"`
}

type RegisterResponse struct {
	DroneID           string     `json:"drone_id"`
	DroneName         string     `json:"drone_name"`
	IsNew             bool       `json:"is_new"`
	Collection        string     `json:"collection"`
	VideoURL          *string    `json:"video_url"`
	ConnectTime       *time.Time `json:"connect_time"`
	IngestToken       string     `json:"ingest_token,omitempty"`
	IngestTokenIssued bool       `json:"ingest_token_issued"`
}

type DroneResponse struct {
	DroneID     string     `json:"drone_id"`
	DroneName   string     `json:"drone_name"`
	ConnectTime *time.Time `json:"connect_time"`
	Latitude    *float64   `json:"drone_lat"`
	Longitude   *float64   `json:"drone_lon"`
	VideoURL    *string    `json:"video_url"`
}

type StatusResponse struct {
	DroneID     string     `json:"drone_id"`
	DroneName   string     `json:"drone_name"`
	Latitude    *float64   `json:"drone_lat"`
	Longitude   *float64   `json:"drone_lon"`
	ConnectTime *time.Time `json:"connect_time"`
	RiskLevel   *float64   `json:"risk_level"`
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	WindSpeed   *float64   `json:"wind_speed"`
}

type VideoURLResponse struct {
	DroneName string  `json:"drone_name"`
	VideoURL  *string `json:"video_url"`
}

func ToDroneResponse(d *domainDrone.Drone) *DroneResponse {
	return &DroneResponse{
		DroneID:     d.ID,
		DroneName:   d.Name,
		ConnectTime: d.LastConnectTime,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		VideoURL:    d.VideoURL,
	}
}

func ToStatusResponse(d *domainDrone.Drone) *StatusResponse {
	return &StatusResponse{
		DroneID:     d.ID,
		DroneName:   d.Name,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		ConnectTime: d.LastConnectTime,
		RiskLevel:   d.Telemetry.RiskLevel,
		Temperature: d.Telemetry.Temperature,
		Humidity:    d.Telemetry.Humidity,
		WindSpeed:   d.Telemetry.WindSpeed,
	}
}
