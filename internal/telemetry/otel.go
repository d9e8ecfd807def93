package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/san-kum/rovsim/internal/telemetry"

// meter returns the global meter; it is a no-op until a provider is
// installed.
func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
