package models

import "time"

// PushTokenModel represents the database model for mobile push tokens.
type PushTokenModel struct {
	Token     string    `gorm:"column:expo_push_token;type:varchar(255);primaryKey"`
	DeviceID  *string   `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"not null"`
}

func (PushTokenModel) TableName() string {
	return "push_tokens"
}
