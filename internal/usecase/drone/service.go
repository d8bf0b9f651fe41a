package drone

import (
	"context"
	"errors"
	"time"

	"drone-fire-monitor/internal/auth"
	domainDetection "drone-fire-monitor/internal/domain/detection"
	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/logger"
	appErrors "drone-fire-monitor/pkg/errors"
	"drone-fire-monitor/pkg/utils"

	"go.uber.org/zap"
)

// Service implements drone registry use cases
type Service struct {
	droneRepo domainDrone.Repository
	issuer    *auth.TokenIssuer
	idPrefix  string
	now       func() time.Time
}

// NewService creates a new drone service. A nil issuer disables ingest tokens and a nil
// clock falls back to the wall clock.
func NewService(droneRepo domainDrone.Repository, issuer *auth.TokenIssuer, idPrefix string, now func() time.Time) *Service {
	return &Service{
		droneRepo: droneRepo,
		issuer:    issuer,
		idPrefix:  idPrefix,
		now:       utils.ClockOrDefault(now),
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.DroneName = utils.SanitizeName(req.DroneName)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError("Invalid input", err)
	}

	collection := domainDetection.CollectionName(req.DroneName)
	outcome, err := s.droneRepo.Register(ctx, domainDrone.RegisterInput{
		Name:       req.DroneName,
		Collection: collection,
		Latitude:   req.DroneLat,
		Longitude:  req.DroneLon,
		IDPrefix:   s.idPrefix,
		Now:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	resp := &RegisterResponse{
		DroneID:     outcome.Drone.ID,
		DroneName:   outcome.Drone.Name,
		IsNew:       outcome.IsNew,
		Collection:  collection,
		VideoURL:    outcome.Drone.VideoURL,
		ConnectTime: outcome.Drone.LastConnectTime,
	}

	if s.issuer.Enabled() {
		token, err := s.issuer.Issue(outcome.Drone.ID, collection)
		if err != nil {
			logger.Warn("Failed to issue ingest token",
				zap.String("drone_id", outcome.Drone.ID),
				zap.Error(err),
			)
		} else {
			resp.IngestToken = token
			resp.IngestTokenIssued = true
		}
	}

	logger.Info("Drone registered",
		zap.String("drone_id", outcome.Drone.ID),
		zap.String("drone_name", outcome.Drone.Name),
		zap.Bool("is_new", outcome.IsNew),
		zap.String("event", "drone_registered"),
	)

	return resp, nil
}

// MarkConnected opens a new live-photo window for the drone.
func (s *Service) MarkConnected(ctx context.Context, droneName string) (*DroneResponse, error) {
	d, err := s.droneRepo.MarkConnected(ctx, utils.SanitizeName(droneName), s.now())
	if err != nil {
		return nil, err
	}

	logger.Info("Drone connected",
		zap.String("drone_id", d.ID),
		zap.String("drone_name", d.Name),
		zap.String("event", "drone_connected"),
	)

	return ToDroneResponse(d), nil
}

func (s *Service) List(ctx context.Context) ([]*DroneResponse, error) {
	drones, err := s.droneRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*DroneResponse, len(drones))
	for i, d := range drones {
		responses[i] = ToDroneResponse(d)
	}
	return responses, nil
}

func (s *Service) GetStatus(ctx context.Context, droneName string) (*StatusResponse, error) {
	d, err := s.droneRepo.GetByName(ctx, utils.SanitizeName(droneName))
	if err != nil {
		return nil, err
	}
	return ToStatusResponse(d), nil
}

// GetVideoURL resolves the stream mapping. A drone without a mapping yields a nil url.
func (s *Service) GetVideoURL(ctx context.Context, droneName string) (*VideoURLResponse, error) {
	name := utils.SanitizeName(droneName)
	resp := &VideoURLResponse{DroneName: name}

	mapping, err := s.droneRepo.GetVideoMapping(ctx, name)
	if errors.Is(err, domainDrone.ErrVideoURLNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	resp.VideoURL = &mapping.StreamVideoURL
	return resp, nil
}

func (s *Service) SetVideoURL(ctx context.Context, droneName string, req *SetVideoURLRequest) (*VideoURLResponse, error) {
	name := utils.SanitizeName(droneName)
	if name == "" {
		return nil, appErrors.NewValidationError("Invalid input", domainDrone.ErrInvalidDroneName)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError("Invalid video url", err)
	}

	err := s.droneRepo.UpsertVideoMapping(ctx, &domainDrone.VideoMapping{
		DroneName:      name,
		StreamVideoURL: req.VideoURL,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Drone video url updated",
		zap.String("drone_name", name),
		zap.String("event", "video_url_updated"),
	)

	return &VideoURLResponse{DroneName: name, VideoURL: &req.VideoURL}, nil
}
