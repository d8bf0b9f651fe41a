package pushtoken

import (
	"context"
	"strings"
	"time"

	domainPushToken "drone-fire-monitor/internal/domain/pushtoken"
	"drone-fire-monitor/internal/logger"
	appErrors "drone-fire-monitor/pkg/errors"
	"drone-fire-monitor/pkg/utils"

	"go.uber.org/zap"
)

type RegisterRequest struct {
	Token    string  `json:"expo_push_token" validate:"required,max=255"`
	DeviceID *string `json:"device_id" validate:"omitempty,max=255"`
}

type RegisterResponse struct {
	Token        string    `json:"expo_push_token"`
	DeviceID     *string   `json:"device_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Service implements push token use cases
type Service struct {
	repo domainPushToken.Repository
	now  func() time.Time
}

func NewService(repo domainPushToken.Repository, now func() time.Time) *Service {
	return &Service{
		repo: repo,
		now:  utils.ClockOrDefault(now),
	}
}

// Register stores the token, refreshing the device id and registration time of a known one.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError("Invalid input", domainPushToken.ErrEmptyToken)
	}

	token := &domainPushToken.Token{
		Token:     req.Token,
		DeviceID:  req.DeviceID,
		CreatedAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, token); err != nil {
		return nil, err
	}

	if !domainPushToken.IsExpoToken(token.Token) {
		logger.Warn("Registered push token is not an Expo token and will not receive alerts",
			zap.String("event", "push_token_unaddressable"),
		)
	}

	return &RegisterResponse{
		Token:        token.Token,
		DeviceID:     token.DeviceID,
		RegisteredAt: token.CreatedAt,
	}, nil
}

// Addressable returns every stored token that alerts can be delivered to.
func (s *Service) Addressable(ctx context.Context) ([]string, error) {
	tokens, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !domainPushToken.IsExpoToken(t.Token) {
			logger.Warn("Skipping invalid push token", zap.String("event", "push_token_skipped"))
			continue
		}
		out = append(out, t.Token)
	}
	return out, nil
}
