// Package metrics records gatekeeping outcomes, with a Prometheus
// implementation and a no-op default.
package metrics

import "time"

// Recorder observes authorize decisions.
type Recorder interface {
	// RecordAuthorize records one gatekeeping decision. Rail is the payment
	// rail attempted ("chain", "processor", "bypass", "none") and outcome is
	// "authorized" or the denial kind.
	RecordAuthorize(rail, outcome string, duration time.Duration)
}

// Noop discards all observations.
type Noop struct{}

func (Noop) RecordAuthorize(string, string, time.Duration) {}
