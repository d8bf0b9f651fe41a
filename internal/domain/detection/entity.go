package detection

import "time"

// Event is a single detection pushed by a drone. Events are never modified after insert.
type Event struct {
	ID          int64
	DroneID     string
	DroneName   string
	Collection  string
	EventTime   time.Time
	Confidence  float64
	ImagePath   string
	GPSLat      *float64
	GPSLon      *float64
	RiskLevel   *float64
	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64
}

// HasLocation reports whether the event carries a full GPS fix.
func (e *Event) HasLocation() bool {
	return e.GPSLat != nil && e.GPSLon != nil
}
