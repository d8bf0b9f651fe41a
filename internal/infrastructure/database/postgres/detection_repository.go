package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DetectionRepository implements domain.Detection.Repository interface
type DetectionRepository struct {
	db *DB
}

// NewDetectionRepository creates a new detection event repository
func NewDetectionRepository(db *DB) domainDetection.Repository {
	return &DetectionRepository{db: db}
}

// ensureCollection is idempotent and safe against concurrent first-time creation.
func ensureCollection(tx *gorm.DB, name, droneID string, at time.Time) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EventCollectionModel{
			Name:      name,
			DroneID:   droneID,
			CreatedAt: at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to ensure event collection %q: %w", name, err)
	}
	return nil
}

func (r *DetectionRepository) Append(ctx context.Context, event *domainDetection.Event) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.DroneModel
		err := tx.Where("name = ?", event.DroneName).First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainDrone.ErrDroneNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get drone: %w", err)
		}

		if event.DroneID != "" && event.DroneID != owner.ID {
			return domainDrone.ErrDroneMismatch
		}

		event.DroneID = owner.ID
		if event.Collection == "" {
			event.Collection = domainDetection.CollectionName(owner.Name)
		}
		if err := ensureCollection(tx, event.Collection, owner.ID, event.EventTime); err != nil {
			return err
		}

		dbModel := toDetectionEventModel(event)
		if err := tx.Create(dbModel).Error; err != nil {
			return fmt.Errorf("failed to insert detection event: %w", err)
		}
		event.ID = dbModel.ID

		updates := map[string]interface{}{
			"updated_at": event.EventTime,
		}
		if event.RiskLevel != nil {
			updates["risk_level"] = *event.RiskLevel
		}
		if event.Temperature != nil {
			updates["temperature"] = *event.Temperature
		}
		if event.Humidity != nil {
			updates["humidity"] = *event.Humidity
		}
		if event.WindSpeed != nil {
			updates["wind_speed"] = *event.WindSpeed
		}
		if event.HasLocation() {
			updates["latitude"] = *event.GPSLat
			updates["longitude"] = *event.GPSLon
		}

		if err := tx.Model(&models.DroneModel{}).Where("id = ?", owner.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update drone telemetry: %w", err)
		}
		return nil
	})
}

func (r *DetectionRepository) QueryRecent(ctx context.Context, droneID string, limit int) ([]*domainDetection.Event, error) {
	return r.find(r.byDrone(ctx, droneID).Limit(limit))
}

func (r *DetectionRepository) QueryRange(ctx context.Context, droneID string, from, to time.Time) ([]*domainDetection.Event, error) {
	return r.find(r.byDrone(ctx, droneID).
		Where("event_time >= ? AND event_time < ?", from.UTC(), to.UTC()))
}

func (r *DetectionRepository) QueryAfter(ctx context.Context, droneID string, after time.Time) ([]*domainDetection.Event, error) {
	return r.find(r.byDrone(ctx, droneID).
		Where("event_time > ?", after.UTC()))
}

func (r *DetectionRepository) byDrone(ctx context.Context, droneID string) *gorm.DB {
	return r.db.DB.WithContext(ctx).
		Where("drone_id = ?", droneID).
		Order("event_time DESC").
		Order("id DESC")
}

func (r *DetectionRepository) ListAlertCandidates(ctx context.Context, after, until time.Time, minConfidence float64) ([]*domainDetection.Event, error) {
	query := r.db.DB.WithContext(ctx).
		Where("event_time > ? AND event_time <= ?", after.UTC(), until.UTC()).
		Where("confidence >= ?", minConfidence).
		Order("event_time ASC").
		Order("id ASC")

	events, err := r.find(query)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	droneIDs := make([]string, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.DroneID]; !ok {
			seen[e.DroneID] = struct{}{}
			droneIDs = append(droneIDs, e.DroneID)
		}
	}

	var owners []models.DroneModel
	if err := r.db.DB.WithContext(ctx).Where("id IN ?", droneIDs).Find(&owners).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve drone names: %w", err)
	}
	names := make(map[string]string, len(owners))
	for _, o := range owners {
		names[o.ID] = o.Name
	}
	for _, e := range events {
		e.DroneName = names[e.DroneID]
	}

	return events, nil
}

func (r *DetectionRepository) find(query *gorm.DB) ([]*domainDetection.Event, error) {
	var dbModels []models.DetectionEventModel
	if err := query.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to query detection events: %w", err)
	}

	events := make([]*domainDetection.Event, len(dbModels))
	for i := range dbModels {
		events[i] = toDetectionEventEntity(&dbModels[i])
	}
	return events, nil
}

func toDetectionEventModel(e *domainDetection.Event) *models.DetectionEventModel {
	return &models.DetectionEventModel{
		ID:          e.ID,
		DroneID:     e.DroneID,
		Collection:  e.Collection,
		EventTime:   e.EventTime.UTC(),
		Confidence:  e.Confidence,
		ImagePath:   e.ImagePath,
		GPSLat:      e.GPSLat,
		GPSLon:      e.GPSLon,
		RiskLevel:   e.RiskLevel,
		Temperature: e.Temperature,
		Humidity:    e.Humidity,
		WindSpeed:   e.WindSpeed,
	}
}

func toDetectionEventEntity(m *models.DetectionEventModel) *domainDetection.Event {
	return &domainDetection.Event{
		ID:          m.ID,
		DroneID:     m.DroneID,
		Collection:  m.Collection,
		EventTime:   m.EventTime.UTC(),
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
