package models

import "time"

// EventCollectionModel records the event partition provisioned for a drone.
// Distinct drone names may sanitize to the same collection name, so the drone id is the key.
type EventCollectionModel struct {
	DroneID   string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (EventCollectionModel) TableName() string {
	return "event_collections"
}

// DetectionEventModel represents the database model for detection events.
type DetectionEventModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	DroneID     string    `gorm:"type:varchar(64);not null;index:idx_detection_drone_time,priority:1"`
	Collection  string    `gorm:"type:varchar(255);not null"`
	EventTime   time.Time `gorm:"not null;index:idx_detection_drone_time,priority:2;index"`
	Confidence  float64   `gorm:"not null"`
	ImagePath   string    `gorm:"type:text"`
	GPSLat      *float64  `gorm:"column:gps_lat"`
	GPSLon      *float64  `gorm:"column:gps_lon"`
	RiskLevel   *float64
	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64
}

func (DetectionEventModel) TableName() string {
	return "detection_events"
}
