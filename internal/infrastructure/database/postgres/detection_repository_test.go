package postgres_test

import (
	"context"
	"testing"
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/infrastructure/database/postgres"
	"drone-fire-monitor/internal/infrastructure/database/postgres/models"
	"drone-fire-monitor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDrone(t *testing.T, db *postgres.DB, name string) *domainDrone.Drone {
	t.Helper()
	outcome, err := postgres.NewDroneRepository(db).Register(context.Background(), registerInput(name, baseTime))
	require.NoError(t, err)
	return outcome.Drone
}

func countCollections(t *testing.T, db *postgres.DB, droneID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.Model(&models.EventCollectionModel{}).Where("drone_id = ?", droneID).Count(&n).Error)
	return n
}

func appendAt(t *testing.T, repo domainDetection.Repository, name string, at time.Time, confidence float64) *domainDetection.Event {
	t.Helper()
	e := &domainDetection.Event{
		DroneName:  name,
		Collection: domainDetection.CollectionName(name),
		EventTime:  at,
		Confidence: confidence,
		ImagePath:  "images/" + at.Format("150405") + ".jpg",
	}
	require.NoError(t, repo.Append(context.Background(), e))
	return e
}

func TestDetectionRepositoryAppendUpdatesTelemetry(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := seedDrone(t, db, "drone_a")
	repo := postgres.NewDetectionRepository(db)
	ctx := context.Background()

	e := &domainDetection.Event{
		DroneName:   "drone_a",
		EventTime:   baseTime.Add(time.Minute),
		Confidence:  0.9,
		GPSLat:      testutil.Float64(35.1),
		GPSLon:      testutil.Float64(129.0),
		RiskLevel:   testutil.Float64(82),
		Temperature: testutil.Float64(31.5),
	}
	require.NoError(t, repo.Append(ctx, e))
	assert.NotZero(t, e.ID)
	assert.Equal(t, d.ID, e.DroneID)
	assert.Equal(t, "drone_a", e.Collection)

	updated, err := postgres.NewDroneRepository(db).GetByName(ctx, "drone_a")
	require.NoError(t, err)
	assert.InDelta(t, 82, *updated.Telemetry.RiskLevel, 1e-9)
	assert.InDelta(t, 31.5, *updated.Telemetry.Temperature, 1e-9)
	assert.Nil(t, updated.Telemetry.Humidity)
	assert.InDelta(t, 35.1, *updated.Latitude, 1e-9)
	assert.True(t, updated.LastConnectTime.Equal(baseTime), "ingestion must not move the connect time")
}

func TestDetectionRepositoryAppendUnknownDrone(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewDetectionRepository(db)
	ctx := context.Background()

	err := repo.Append(ctx, &domainDetection.Event{
		DroneName:  "ghost_drone",
		Collection: "ghost_drone",
		EventTime:  baseTime,
		Confidence: 0.5,
	})
	assert.ErrorIs(t, err, domainDrone.ErrDroneNotFound)

	var n int64
	require.NoError(t, db.DB.Model(&models.EventCollectionModel{}).Where("name = ?", "ghost_drone").Count(&n).Error)
	assert.Zero(t, n)
}

func TestDetectionRepositoryQueryRecent(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := seedDrone(t, db, "drone_a")
	seedDrone(t, db, "drone_b")
	repo := postgres.NewDetectionRepository(db)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		appendAt(t, repo, "drone_a", baseTime.Add(time.Duration(i)*time.Second), 0.5)
	}
	appendAt(t, repo, "drone_b", baseTime.Add(time.Hour), 0.5)

	events, err := repo.QueryRecent(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 10)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].EventTime.After(events[i].EventTime))
	}
	assert.True(t, events[0].EventTime.Equal(baseTime.Add(11*time.Second)))
}

func TestDetectionRepositoryTiesBreakByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := seedDrone(t, db, "drone_a")
	repo := postgres.NewDetectionRepository(db)

	first := appendAt(t, repo, "drone_a", baseTime, 0.5)
	second := appendAt(t, repo, "drone_a", baseTime, 0.6)

	events, err := repo.QueryRecent(context.Background(), a.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
	assert.Equal(t, first.ID, events[1].ID)
}

func TestDetectionRepositoryQueryAfterIsExclusive(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := seedDrone(t, db, "drone_a")
	repo := postgres.NewDetectionRepository(db)

	appendAt(t, repo, "drone_a", baseTime, 0.5)
	after := appendAt(t, repo, "drone_a", baseTime.Add(time.Second), 0.5)

	events, err := repo.QueryAfter(context.Background(), a.ID, baseTime)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, after.ID, events[0].ID)
}

func TestDetectionRepositoryQueryRange(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := seedDrone(t, db, "drone_a")
	repo := postgres.NewDetectionRepository(db)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	appendAt(t, repo, "drone_a", day.Add(-time.Second), 0.5)
	inside := appendAt(t, repo, "drone_a", day, 0.5)
	appendAt(t, repo, "drone_a", day.Add(24*time.Hour), 0.5)

	events, err := repo.QueryRange(context.Background(), a.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, inside.ID, events[0].ID)

	empty, err := repo.QueryRange(context.Background(), a.ID,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDetectionRepositoryCollidingCollectionNamesStaySeparate(t *testing.T) {
	db := testutil.NewTestDB(t)
	hyphen := seedDrone(t, db, "drone-1")
	underscore := seedDrone(t, db, "drone_1")
	require.NotEqual(t, hyphen.ID, underscore.ID)
	require.Equal(t, domainDetection.CollectionName("drone-1"), domainDetection.CollectionName("drone_1"))
	repo := postgres.NewDetectionRepository(db)
	ctx := context.Background()

	stored := appendAt(t, repo, "drone-1", baseTime.Add(time.Second), 0.9)
	assert.Equal(t, hyphen.ID, stored.DroneID)

	events, err := repo.QueryRecent(ctx, hyphen.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stored.ID, events[0].ID)

	events, err = repo.QueryRecent(ctx, underscore.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = repo.QueryAfter(ctx, underscore.ID, baseTime)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = repo.QueryRange(ctx, underscore.ID, baseTime, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDetectionRepositoryAppendRejectsOtherDronesID(t *testing.T) {
	db := testutil.NewTestDB(t)
	hyphen := seedDrone(t, db, "drone-1")
	underscore := seedDrone(t, db, "drone_1")
	repo := postgres.NewDetectionRepository(db)
	ctx := context.Background()

	err := repo.Append(ctx, &domainDetection.Event{
		DroneID:    hyphen.ID,
		DroneName:  "drone_1",
		EventTime:  baseTime.Add(time.Second),
		Confidence: 0.9,
	})
	assert.ErrorIs(t, err, domainDrone.ErrDroneMismatch)

	events, err := repo.QueryRecent(ctx, underscore.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, repo.Append(ctx, &domainDetection.Event{
		DroneID:    hyphen.ID,
		DroneName:  "drone-1",
		EventTime:  baseTime.Add(time.Second),
		Confidence: 0.9,
	}))
}

func TestDetectionRepositoryAppendProvisionsCollectionOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := seedDrone(t, db, "drone_a")
	repo := postgres.NewDetectionRepository(db)

	appendAt(t, repo, "drone_a", baseTime.Add(time.Second), 0.5)
	appendAt(t, repo, "drone_a", baseTime.Add(2*time.Second), 0.5)

	assert.Equal(t, int64(1), countCollections(t, db, d.ID))
}

func TestDetectionRepositoryListAlertCandidates(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedDrone(t, db, "drone_a")
	seedDrone(t, db, "drone_b")
	repo := postgres.NewDetectionRepository(db)

	appendAt(t, repo, "drone_a", baseTime.Add(1*time.Second), 0.9)
	appendAt(t, repo, "drone_a", baseTime.Add(2*time.Second), 0.5)
	b := appendAt(t, repo, "drone_b", baseTime.Add(3*time.Second), 0.75)
	appendAt(t, repo, "drone_b", baseTime.Add(10*time.Second), 0.99)

	events, err := repo.ListAlertCandidates(context.Background(), baseTime, baseTime.Add(5*time.Second), 0.75)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "drone_a", events[0].DroneName)
	assert.Equal(t, b.ID, events[1].ID)
	assert.Equal(t, "drone_b", events[1].DroneName)
}
