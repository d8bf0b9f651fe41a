package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/infrastructure/database/postgres/models"
	"drone-fire-monitor/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// registrationLockKey identifies the advisory lock serializing id generation.
	registrationLockKey int64 = 0x64726f6e65
	maxRegisterAttempts       = 3
)

// DroneRepository implements domain.Drone.Repository interface
type DroneRepository struct {
	db *DB
}

// NewDroneRepository creates a new drone repository
func NewDroneRepository(db *DB) domainDrone.Repository {
	return &DroneRepository{db: db}
}

func (r *DroneRepository) Register(ctx context.Context, in domainDrone.RegisterInput) (*domainDrone.RegisterOutcome, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRegisterAttempts; attempt++ {
		outcome, err := r.registerOnce(ctx, in)
		if err == nil {
			return outcome, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		lastErr = err
		logger.Warn("Drone registration collided, retrying",
			zap.String("drone_name", in.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("%w: %v", domainDrone.ErrRegistrationFailed, lastErr)
}

func (r *DroneRepository) registerOnce(ctx context.Context, in domainDrone.RegisterInput) (*domainDrone.RegisterOutcome, error) {
	outcome := &domainDrone.RegisterOutcome{}
	now := in.Now

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", registrationLockKey).Error; err != nil {
				return fmt.Errorf("failed to acquire registration lock: %w", err)
			}
		}

		videoURL, err := lookupVideoURL(tx, in.Name)
		if err != nil {
			return err
		}

		var dbModel models.DroneModel
		err = tx.Where("name = ?", in.Name).First(&dbModel).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"last_connect_time": now,
				"video_url":         videoURL,
				"updated_at":        now,
			}
			if in.Latitude != nil {
				updates["latitude"] = *in.Latitude
			}
			if in.Longitude != nil {
				updates["longitude"] = *in.Longitude
			}

			if err := tx.Model(&models.DroneModel{}).Where("id = ?", dbModel.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update drone: %w", err)
			}
			if err := tx.Where("id = ?", dbModel.ID).First(&dbModel).Error; err != nil {
				return fmt.Errorf("failed to reload drone: %w", err)
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			id, err := nextDroneID(tx, in.IDPrefix, now.Year())
			if err != nil {
				return err
			}

			dbModel = models.DroneModel{
				ID:              id,
				Name:            in.Name,
				LastConnectTime: &now,
				Latitude:        in.Latitude,
				Longitude:       in.Longitude,
				VideoURL:        videoURL,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.Create(&dbModel).Error; err != nil {
				return fmt.Errorf("failed to create drone: %w", err)
			}
			outcome.IsNew = true

		default:
			return fmt.Errorf("failed to get drone: %w", err)
		}

		if err := ensureCollection(tx, in.Collection, dbModel.ID, now); err != nil {
			return err
		}

		outcome.Drone = toDroneEntity(&dbModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func nextDroneID(tx *gorm.DB, prefix string, year int) (string, error) {
	var ids []string
	err := tx.Model(&models.DroneModel{}).
		Where("id LIKE ?", domainDrone.IDPattern(prefix, year)+"%").
		Pluck("id", &ids).Error
	if err != nil {
		return "", fmt.Errorf("failed to list drone ids: %w", err)
	}
	return domainDrone.NextID(prefix, year, ids), nil
}

func lookupVideoURL(tx *gorm.DB, name string) (*string, error) {
	var mapping models.VideoURLModel
	err := tx.Where("drone_name = ?", name).First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video url: %w", err)
	}
	return &mapping.StreamVideoURL, nil
}

func (r *DroneRepository) MarkConnected(ctx context.Context, name string, at time.Time) (*domainDrone.Drone, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DroneModel{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_connect_time": at,
			"updated_at":        at,
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark drone connected: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domainDrone.ErrDroneNotFound
	}

	return r.GetByName(ctx, name)
}

func (r *DroneRepository) GetByName(ctx context.Context, name string) (*domainDrone.Drone, error) {
	var dbModel models.DroneModel
	err := r.db.DB.WithContext(ctx).
		Where("name = ?", name).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDrone.ErrDroneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drone: %w", err)
	}

	return toDroneEntity(&dbModel), nil
}

func (r *DroneRepository) List(ctx context.Context) ([]*domainDrone.Drone, error) {
	var dbModels []models.DroneModel
	err := r.db.DB.WithContext(ctx).
		Order("last_connect_time IS NULL").
		Order("last_connect_time DESC").
		Order("id ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drones: %w", err)
	}

	drones := make([]*domainDrone.Drone, len(dbModels))
	for i := range dbModels {
		drones[i] = toDroneEntity(&dbModels[i])
	}
	return drones, nil
}

func (r *DroneRepository) GetVideoMapping(ctx context.Context, name string) (*domainDrone.VideoMapping, error) {
	var dbModel models.VideoURLModel
	err := r.db.DB.WithContext(ctx).
		Where("drone_name = ?", name).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDrone.ErrVideoURLNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video url: %w", err)
	}

	return &domainDrone.VideoMapping{
		DroneName:      dbModel.DroneName,
		StreamVideoURL: dbModel.StreamVideoURL,
		UpdatedAt:      dbModel.UpdatedAt,
	}, nil
}

// UpsertVideoMapping stores the mapping and refreshes the cached url of a registered drone.
func (r *DroneRepository) UpsertVideoMapping(ctx context.Context, mapping *domainDrone.VideoMapping) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbModel := &models.VideoURLModel{
			DroneName:      mapping.DroneName,
			StreamVideoURL: mapping.StreamVideoURL,
			UpdatedAt:      mapping.UpdatedAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "drone_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"stream_video_url", "updated_at"}),
		}).Create(dbModel).Error
		if err != nil {
			return fmt.Errorf("failed to upsert video url: %w", err)
		}

		err = tx.Model(&models.DroneModel{}).
			Where("name = ?", mapping.DroneName).
			Update("video_url", mapping.StreamVideoURL).Error
		if err != nil {
			return fmt.Errorf("failed to refresh drone video url: %w", err)
		}
		return nil
	})
}

func toDroneEntity(m *models.DroneModel) *domainDrone.Drone {
	return &domainDrone.Drone{
		ID:              m.ID,
		Name:            m.Name,
		LastConnectTime: utcPtr(m.LastConnectTime),
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		VideoURL:        m.VideoURL,
		Telemetry: domainDrone.Telemetry{
			RiskLevel:   m.RiskLevel,
			Temperature: m.Temperature,
			Humidity:    m.Humidity,
			WindSpeed:   m.WindSpeed,
		},
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
