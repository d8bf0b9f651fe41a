package detection

import (
	"context"
	"errors"
	"strings"
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
	domainDrone "drone-fire-monitor/internal/domain/drone"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/mediaproxy"
	appErrors "drone-fire-monitor/pkg/errors"
	"drone-fire-monitor/pkg/utils"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Options tune history queries.
type Options struct {
	RecentLimit int
	Location    *time.Location
	Now         func() time.Time
}

// Service implements detection event use cases
type Service struct {
	detectionRepo domainDetection.Repository
	droneRepo     domainDrone.Repository
	rewriter      *mediaproxy.Rewriter
	recentLimit   int
	location      *time.Location
	now           func() time.Time
}

// NewService creates a new detection service
func NewService(
	detectionRepo domainDetection.Repository,
	droneRepo domainDrone.Repository,
	rewriter *mediaproxy.Rewriter,
	opts Options,
) *Service {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		detectionRepo: detectionRepo,
		droneRepo:     droneRepo,
		rewriter:      rewriter,
		recentLimit:   opts.RecentLimit,
		location:      opts.Location,
		now:           utils.ClockOrDefault(opts.Now),
	}
}

// Ingest stores a detection for a registered drone. The event time is assigned here.
func (s *Service) Ingest(ctx context.Context, req *IngestRequest) (*IngestResponse, error) {
	req.DroneName = utils.SanitizeName(req.DroneName)
	req.ImagePath = strings.TrimSpace(req.ImagePath)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewValidationError("Invalid input", err)
	}
	if !domainDetection.ValidConfidence(*req.Confidence) {
		return nil, appErrors.NewValidationError("Invalid input", domainDetection.ErrInvalidConfidence)
	}

	event := &domainDetection.Event{
		DroneID:     req.DroneID,
		DroneName:   req.DroneName,
		Collection:  domainDetection.CollectionName(req.DroneName),
		EventTime:   s.now(),
		Confidence:  *req.Confidence,
		ImagePath:   req.ImagePath,
		GPSLat:      req.GPSLat,
		GPSLon:      req.GPSLon,
		RiskLevel:   req.RiskLevel,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		WindSpeed:   req.WindSpeed,
	}

	if err := s.detectionRepo.Append(ctx, event); err != nil {
		return nil, err
	}

	logger.Debug("Detection event stored",
		zap.Int64("event_id", event.ID),
		zap.String("drone_id", event.DroneID),
		zap.Float64("confidence", event.Confidence),
	)

	return &IngestResponse{
		EventID:    event.ID,
		DroneID:    event.DroneID,
		Collection: event.Collection,
		EventTime:  event.EventTime,
	}, nil
}

// History returns the newest events of a drone, the events of one calendar day, or the
// events after an instant. Unknown drones and drones that never stored anything yield an
// empty list.
func (s *Service) History(ctx context.Context, droneName string, q *HistoryQuery) ([]*EventResponse, error) {
	if err := utils.ValidateStruct(q); err != nil {
		return nil, appErrors.NewValidationError("Invalid query", err)
	}
	if q.Date != "" && q.Since != "" {
		return nil, appErrors.NewValidationError("date and since cannot be combined", nil)
	}

	var from, to, since time.Time
	switch {
	case q.Date != "":
		var err error
		if from, to, err = s.dayBounds(q.Date); err != nil {
			return nil, err
		}
	case q.Since != "":
		var err error
		if since, err = time.Parse(time.RFC3339, q.Since); err != nil {
			return nil, appErrors.NewValidationError("Invalid since", domainDetection.ErrInvalidSince)
		}
	}

	d, err := s.droneRepo.GetByName(ctx, utils.SanitizeName(droneName))
	if errors.Is(err, domainDrone.ErrDroneNotFound) {
		return []*EventResponse{}, nil
	}
	if err != nil {
		return nil, err
	}

	var events []*domainDetection.Event
	switch {
	case q.Date != "":
		events, err = s.detectionRepo.QueryRange(ctx, d.ID, from, to)
	case q.Since != "":
		events, err = s.detectionRepo.QueryAfter(ctx, d.ID, since)
	default:
		limit := s.recentLimit
		if q.Limit > 0 {
			limit = q.Limit
		}
		events, err = s.detectionRepo.QueryRecent(ctx, d.ID, limit)
	}
	if err != nil {
		return nil, err
	}

	return s.toResponses(events), nil
}

// QueryByDate returns the events stored during the calendar day in the service time zone.
func (s *Service) QueryByDate(ctx context.Context, droneName, date string) ([]*EventResponse, error) {
	return s.History(ctx, droneName, &HistoryQuery{Date: date})
}

func (s *Service) dayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.location)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.NewValidationError("Invalid date", domainDetection.ErrInvalidDate)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// LiveWindow returns the events stored strictly after the drone's last connect time.
func (s *Service) LiveWindow(ctx context.Context, droneName string) (*LivePhotosResponse, error) {
	d, err := s.droneRepo.GetByName(ctx, utils.SanitizeName(droneName))
	if err != nil {
		return nil, err
	}

	resp := &LivePhotosResponse{
		DroneName:   d.Name,
		ConnectTime: d.LastConnectTime,
		Photos:      []*EventResponse{},
	}
	if !d.HasConnected() {
		return resp, nil
	}

	events, err := s.detectionRepo.QueryAfter(ctx, d.ID, *d.LastConnectTime)
	if err != nil {
		return nil, err
	}
	resp.Photos = s.toResponses(events)

	return resp, nil
}

func (s *Service) toResponses(events []*domainDetection.Event) []*EventResponse {
	var rewrite func(string) string
	if s.rewriter != nil {
		rewrite = s.rewriter.Rewrite
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = ToEventResponse(e, rewrite)
	}
	return responses
}
