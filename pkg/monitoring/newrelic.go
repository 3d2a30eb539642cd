package monitoring

import (
	"fmt"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	opts := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	}
	if cfg.LogLevel == "debug" {
		opts = append(opts, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Ride lifecycle events

// RecordRideRequested records ride creation
func (nr *NewRelicApp) RecordRideRequested(rideID, vehicleType string, fare int64, distanceKM float64) {
	nr.RecordCustomEvent("RideRequested", map[string]interface{}{
		"ride_id":      rideID,
		"vehicle_type": vehicleType,
		"fare":         fare,
		"distance_km":  distanceKM,
	})
}

// RecordRideStatusChanged records a status transition
func (nr *NewRelicApp) RecordRideStatusChanged(rideID, from, to string) {
	nr.RecordCustomEvent("RideStatusChanged", map[string]interface{}{
		"ride_id": rideID,
		"from":    from,
		"to":      to,
	})
	nr.RecordCustomMetric(fmt.Sprintf("custom/ride/status/%s", to), 1)
}

// RecordRideCompleted records settlement of a completed ride
func (nr *NewRelicApp) RecordRideCompleted(rideID, driverID string, fare int64, distanceKM float64) {
	nr.RecordCustomEvent("RideCompleted", map[string]interface{}{
		"ride_id":     rideID,
		"driver_id":   driverID,
		"fare":        fare,
		"distance_km": distanceKM,
	})
}

// RecordDriverApplicationReviewed records an admin decision on an application
func (nr *NewRelicApp) RecordDriverApplicationReviewed(driverID, status string) {
	nr.RecordCustomEvent("DriverApplicationReviewed", map[string]interface{}{
		"driver_id": driverID,
		"status":    status,
	})
}

// RecordDatabasePoolStats records database connection pool statistics
func (nr *NewRelicApp) RecordDatabasePoolStats(stats map[string]interface{}) {
	if open, ok := stats["open_connections"].(int); ok {
		nr.RecordCustomMetric("custom/db/open_connections", float64(open))
	}
	if inUse, ok := stats["in_use"].(int); ok {
		nr.RecordCustomMetric("custom/db/in_use", float64(inUse))
	}
	if idle, ok := stats["idle"].(int); ok {
		nr.RecordCustomMetric("custom/db/idle", float64(idle))
	}
}

// RecordRedisPoolStats records Redis pool statistics
func (nr *NewRelicApp) RecordRedisPoolStats(stats map[string]interface{}) {
	if hits, ok := stats["hits"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_hits", float64(hits))
	}
	if misses, ok := stats["misses"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_misses", float64(misses))
	}
	if timeouts, ok := stats["timeouts"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/timeouts", float64(timeouts))
	}
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr.enabled
}
