package store

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aerolens/uxsdk-go/pkg/log"
)

// Config configures a Store.
type Config struct {
	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	// EventLogger receives the store event trace. Nil disables tracing.
	EventLogger log.Logger

	// Registerer receives the store metrics. Nil registers them on a
	// private registry.
	Registerer prometheus.Registerer
}

// DefaultConfig returns a configuration with logging, tracing and external
// metrics disabled.
func DefaultConfig() Config {
	return Config{}
}
