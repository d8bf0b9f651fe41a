package pushtoken

import (
	"context"
	"testing"
	"time"

	"drone-fire-monitor/internal/infrastructure/database/postgres"
	"drone-fire-monitor/internal/testutil"
	appErrors "drone-fire-monitor/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *testutil.Clock) {
	clock := testutil.NewClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	db := testutil.NewTestDB(t)
	return NewService(postgres.NewPushTokenRepository(db), clock.Now), clock
}

func TestRegisterRejectsEmptyToken(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), &RegisterRequest{Token: "   "})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
}

func TestRegisterUpsertsByToken(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Token: "ExponentPushToken[abc]"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	device := "ios-1"
	resp, err := svc.Register(ctx, &RegisterRequest{Token: "ExponentPushToken[abc]", DeviceID: &device})
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), resp.RegisteredAt)

	tokens, err := svc.Addressable(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, tokens)
}

func TestAddressableSkipsInvalidTokens(t *testing.T) {
	svc, clock := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Token: "not-an-expo-token"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.Register(ctx, &RegisterRequest{Token: "ExpoPushToken[zzz]"})
	require.NoError(t, err)

	tokens, err := svc.Addressable(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ExpoPushToken[zzz]"}, tokens)
}
