package models

import "time"

// DroneModel represents the database model for drones.
type DroneModel struct {
	ID              string     `gorm:"type:varchar(64);primaryKey"`
	Name            string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	LastConnectTime *time.Time `gorm:"index"`
	Latitude        *float64
	Longitude       *float64
	VideoURL        *string `gorm:"type:text"`
	RiskLevel       *float64
	Temperature     *float64
	Humidity        *float64
	WindSpeed       *float64
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (DroneModel) TableName() string {
	return "drones"
}

// VideoURLModel maps a drone name to its live stream.
type VideoURLModel struct {
	DroneName      string    `gorm:"type:varchar(255);primaryKey"`
	StreamVideoURL string    `gorm:"type:text;not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (VideoURLModel) TableName() string {
	return "video_urls"
}
