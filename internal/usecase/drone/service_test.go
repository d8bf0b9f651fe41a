package drone

import (
	"context"
	"testing"
	"time"

	"drone-fire-monitor/internal/auth"
	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/infrastructure/database/postgres"
	"drone-fire-monitor/internal/testutil"
	appErrors "drone-fire-monitor/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, issuer *auth.TokenIssuer) (*Service, *testutil.Clock) {
	clock := testutil.NewClock(start)
	db := testutil.NewTestDB(t)
	return NewService(postgres.NewDroneRepository(db), issuer, "GK", clock.Now), clock
}

func TestRegisterSameNameTwice(t *testing.T) {
	svc, clock := newService(t, nil)
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterRequest{DroneName: "drone_a"})
	require.NoError(t, err)
	assert.True(t, first.IsNew)
	assert.Equal(t, "GK_2025_00", first.DroneID)
	assert.Equal(t, "drone_a", first.Collection)
	assert.False(t, first.IngestTokenIssued)
	assert.Empty(t, first.IngestToken)

	clock.Advance(time.Minute)
	second, err := svc.Register(ctx, &RegisterRequest{DroneName: "  drone_a "})
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.DroneID, second.DroneID)
	assert.True(t, second.ConnectTime.Equal(clock.Now()))
}

func TestRegisterRejectsBlankName(t *testing.T) {
	svc, _ := newService(t, nil)

	for _, name := range []string{"", "   ", "\t"} {
		_, err := svc.Register(context.Background(), &RegisterRequest{DroneName: name})
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
	}
}

func TestRegisterRejectsBadCoordinates(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		DroneName: "drone_a",
		DroneLat:  testutil.Float64(123),
	})
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
}

func TestRegisterIssuesIngestToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("s3cret", time.Hour, func() time.Time { return start })
	svc, _ := newService(t, issuer)

	resp, err := svc.Register(context.Background(), &RegisterRequest{DroneName: "drone-a"})
	require.NoError(t, err)
	require.True(t, resp.IngestTokenIssued)

	claims, err := issuer.Verify(resp.IngestToken)
	require.NoError(t, err)
	assert.Equal(t, resp.DroneID, claims.DroneID())
	assert.Equal(t, "drone_a", claims.Collection)
}

func TestMarkConnectedUnknownDrone(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.MarkConnected(context.Background(), "ghost_drone")
	assert.ErrorIs(t, err, domainDrone.ErrDroneNotFound)
}

func TestStatusAndList(t *testing.T) {
	svc, clock := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{
		DroneName: "drone_a",
		DroneLat:  testutil.Float64(37.56),
		DroneLon:  testutil.Float64(126.97),
	})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = svc.Register(ctx, &RegisterRequest{DroneName: "drone_b"})
	require.NoError(t, err)

	status, err := svc.GetStatus(ctx, "drone_a")
	require.NoError(t, err)
	assert.InDelta(t, 37.56, *status.Latitude, 1e-9)
	assert.Nil(t, status.RiskLevel)

	_, err = svc.GetStatus(ctx, "ghost_drone")
	assert.ErrorIs(t, err, domainDrone.ErrDroneNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "drone_b", list[0].DroneName)
}

func TestVideoURL(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	resp, err := svc.GetVideoURL(ctx, "drone_a")
	require.NoError(t, err)
	assert.Nil(t, resp.VideoURL)

	_, err = svc.SetVideoURL(ctx, "drone_a", &SetVideoURLRequest{VideoURL: "ftp://nope"})
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))

	_, err = svc.SetVideoURL(ctx, "drone_a", &SetVideoURLRequest{VideoURL: "https://stream.example.com/a.m3u8"})
	require.NoError(t, err)

	reg, err := svc.Register(ctx, &RegisterRequest{DroneName: "drone_a"})
	require.NoError(t, err)
	require.NotNil(t, reg.VideoURL)
	assert.Equal(t, "https://stream.example.com/a.m3u8", *reg.VideoURL)

	resp, err = svc.GetVideoURL(ctx, "drone_a")
	require.NoError(t, err)
	require.NotNil(t, resp.VideoURL)
	assert.Equal(t, "https://stream.example.com/a.m3u8", *resp.VideoURL)
}
