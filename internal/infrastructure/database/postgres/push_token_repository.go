package postgres

import (
	"context"
	"fmt"

	domainPushToken "drone-fire-monitor/internal/domain/pushtoken"
	"drone-fire-monitor/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm/clause"
)

// PushTokenRepository implements domain.PushToken.Repository interface
type PushTokenRepository struct {
	db *DB
}

func NewPushTokenRepository(db *DB) domainPushToken.Repository {
	return &PushTokenRepository{db: db}
}

// Upsert inserts the token or refreshes device id and registration time of an existing one.
func (r *PushTokenRepository) Upsert(ctx context.Context, t *domainPushToken.Token) error {
	dbModel := &models.PushTokenModel{
		Token:     t.Token,
		DeviceID:  t.DeviceID,
		CreatedAt: t.CreatedAt.UTC(),
	}
	err := r.db.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "expo_push_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"device_id", "created_at"}),
	}).Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push token: %w", err)
	}
	return nil
}

func (r *PushTokenRepository) List(ctx context.Context) ([]*domainPushToken.Token, error) {
	var dbModels []models.PushTokenModel
	if err := r.db.DB.WithContext(ctx).Order("created_at ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list push tokens: %w", err)
	}

	tokens := make([]*domainPushToken.Token, len(dbModels))
	for i, m := range dbModels {
		tokens[i] = &domainPushToken.Token{
			Token:     m.Token,
			DeviceID:  m.DeviceID,
			CreatedAt: m.CreatedAt.UTC(),
		}
	}
	return tokens, nil
}
