package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"drone-fire-monitor/internal/logger"

	"go.uber.org/zap"
)

// Dispatcher hands an alert to the delivery channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert *Alert) error
}

// Publisher is the subset of *nats.Conn used for alerts.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSDispatcher publishes alerts as JSON on <prefix>.<drone id>.
// Collection names are not unique across drones, so they are not used as subjects.
type NATSDispatcher struct {
	publisher     Publisher
	subjectPrefix string
}

func NewNATSDispatcher(publisher Publisher, subjectPrefix string) *NATSDispatcher {
	return &NATSDispatcher{
		publisher:     publisher,
		subjectPrefix: subjectPrefix,
	}
}

func (d *NATSDispatcher) Subject(droneID string) string {
	return fmt.Sprintf("%s.%s", d.subjectPrefix, droneID)
}

func (d *NATSDispatcher) Dispatch(_ context.Context, alert *Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	subject := d.Subject(alert.DroneID)
	if err := d.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish alert on %s: %w", subject, err)
	}
	return nil
}

// LogDispatcher only records alerts in the service log.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{log: logger.Named("notifier")}
}

func (d *LogDispatcher) Dispatch(_ context.Context, alert *Alert) error {
	d.log.Info("Fire alert",
		zap.String("title", alert.Title),
		zap.String("body", alert.Body),
		zap.String("drone_id", alert.DroneID),
		zap.Int64("event_id", alert.EventID),
		zap.Int("recipients", len(alert.To)),
	)
	return nil
}
