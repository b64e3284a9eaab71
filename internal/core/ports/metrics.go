package ports

import "time"

// MetricsRecorder receives operational counters from the core services.
type MetricsRecorder interface {
	RecordGatewayOutcome(resource, verb, outcome string)
	RecordAggregation(metric string, windowDays int, duration time.Duration, err error)
	RecordFavoriteToggle(favorite bool)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordGatewayOutcome(string, string, string) {}
func (NopMetrics) RecordAggregation(string, int, time.Duration, error) {}
func (NopMetrics) RecordFavoriteToggle(bool) {}
