package drone

import "time"

// Drone represents a registered drone in the domain
type Drone struct {
	ID              string
	Name            string
	LastConnectTime *time.Time
	Latitude        *float64
	Longitude       *float64
	VideoURL        *string
	Telemetry       Telemetry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Telemetry is the environmental reading carried by the most recent detection event
type Telemetry struct {
	RiskLevel   *float64
	Temperature *float64
	Humidity    *float64
	WindSpeed   *float64
}

// HasConnected reports whether an operator session was ever opened for the drone.
func (d *Drone) HasConnected() bool {
	return d.LastConnectTime != nil
}

// RegisterInput carries everything the registry needs to register or reconnect a drone.
type RegisterInput struct {
	Name       string
	Collection string
	Latitude   *float64
	Longitude  *float64
	IDPrefix   string
	Now        time.Time
}

// RegisterOutcome is the result of a registration.
type RegisterOutcome struct {
	Drone *Drone
	IsNew bool
}

// VideoMapping maps a drone name to its live stream address
type VideoMapping struct {
	DroneName      string
	StreamVideoURL string
	UpdatedAt      time.Time
}
