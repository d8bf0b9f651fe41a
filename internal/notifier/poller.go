package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	domainDetection "drone-fire-monitor/internal/domain/detection"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/pkg/utils"

	"go.uber.org/zap"
)

var ErrTickInProgress = errors.New("previous notifier tick still running")

// TokenSource lists the push tokens alerts are addressed to.
type TokenSource interface {
	Addressable(ctx context.Context) ([]string, error)
}

type PollerConfig struct {
	Interval      time.Duration
	// Settle keeps the scan this far behind the clock. Event times are assigned before
	// the insert commits, so a row stamped just before a scan can become visible after it.
	Settle        time.Duration
	MinConfidence float64
	Now           func() time.Time
}

// Poller scans for new high-confidence detections on a fixed interval.
// Each tick covers (lastTick, now-settle], where now is read before the scan starts.
type Poller struct {
	events     domainDetection.Repository
	tokens     TokenSource
	dispatcher Dispatcher
	checkpoint CheckpointStore

	interval      time.Duration
	settle        time.Duration
	minConfidence float64
	now           func() time.Time

	lastTick   time.Time
	processing atomic.Bool
	log        *zap.Logger
}

func NewPoller(
	events domainDetection.Repository,
	tokens TokenSource,
	dispatcher Dispatcher,
	checkpoint CheckpointStore,
	cfg PollerConfig,
) *Poller {
	if checkpoint == nil {
		checkpoint = NewMemoryCheckpoint()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}

	return &Poller{
		events:        events,
		tokens:        tokens,
		dispatcher:    dispatcher,
		checkpoint:    checkpoint,
		interval:      cfg.Interval,
		settle:        cfg.Settle,
		minConfidence: cfg.MinConfidence,
		now:           utils.ClockOrDefault(cfg.Now),
		log:           logger.Named("notifier"),
	}
}

// Init restores the scan boundary. Without a stored checkpoint, scanning starts at the
// settled present so a fresh deployment does not alert on historical detections.
func (p *Poller) Init(ctx context.Context) error {
	at, ok, err := p.checkpoint.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		at = p.horizon()
	}
	p.lastTick = at
	return nil
}

// Run ticks until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if err := p.Init(ctx); err != nil {
		p.log.Warn("Falling back to the current time as notifier checkpoint", zap.Error(err))
		p.lastTick = p.horizon()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("Notifier started",
		zap.Duration("interval", p.interval),
		zap.Duration("settle", p.settle),
		zap.Float64("min_confidence", p.minConfidence),
		zap.Time("since", p.lastTick),
	)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Notifier stopped")
			return
		case <-ticker.C:
			if _, err := p.Tick(ctx); err != nil && !errors.Is(err, ErrTickInProgress) && ctx.Err() == nil {
				p.log.Warn("Notifier tick failed", zap.Error(err))
			}
		}
	}
}

// Tick dispatches alerts for detections since the previous tick and returns how many
// were sent. The boundary only advances when the scan itself succeeded.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	if !p.processing.CompareAndSwap(false, true) {
		return 0, ErrTickInProgress
	}
	defer p.processing.Store(false)

	next := p.horizon()
	if !next.After(p.lastTick) {
		return 0, nil
	}
	events, err := p.events.ListAlertCandidates(ctx, p.lastTick, next, p.minConfidence)
	if err != nil {
		return 0, err
	}

	sent := 0
	if len(events) > 0 {
		tokens, err := p.tokens.Addressable(ctx)
		if err != nil {
			return 0, err
		}

		for _, e := range events {
			alert := BuildAlert(e, tokens)
			if err := p.dispatcher.Dispatch(ctx, alert); err != nil {
				p.log.Warn("Failed to dispatch fire alert",
					zap.Int64("event_id", e.ID),
					zap.String("drone_id", e.DroneID),
					zap.Error(err),
				)
				continue
			}
			sent++
		}
	}

	p.lastTick = next
	if err := p.checkpoint.Save(ctx, next); err != nil {
		p.log.Warn("Failed to persist notifier checkpoint", zap.Error(err))
	}

	return sent, nil
}

// horizon is the newest event time a scan may cover.
func (p *Poller) horizon() time.Time {
	return p.now().Add(-p.settle)
}
