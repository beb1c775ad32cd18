// Package navmetrics exports Prometheus metrics for vgrouter navigations.
//
// Metrics collected (with the default namespace):
//   - vgrouter_navigations_total: counter of navigations by trigger and result
//   - vgrouter_navigation_duration_seconds: histogram of navigation duration by trigger
//   - vgrouter_redirects_total: counter of redirects followed by navigations
//
// Example:
//
//	m := navmetrics.New(navmetrics.WithRegistry(reg))
//	defer m.Attach(router)()
package navmetrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vugu/vgrouter/v2"
)

// Result label values.
const (
	ResultCommitted        = "committed"
	ResultAborted          = "aborted"
	ResultSuperseded       = "superseded"
	ResultTimeout          = "timeout"
	ResultGuardFailure     = "guard_failure"
	ResultNoMatch          = "no_match"
	ResultUnknownRoute     = "unknown_route"
	ResultTooManyRedirects = "too_many_redirects"
	ResultError            = "error"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vgrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vgrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records navigation metrics.
type Collector struct {
	navigations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	redirects   prometheus.Counter
}

// New creates the metrics and registers them.  Registering twice with the same
// registry panics, as with promauto.
func New(opts ...Option) *Collector {

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by trigger and result",
			ConstLabels: config.ConstLabels,
		}, []string{"trigger", "result"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds, guards included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"trigger"}),

		redirects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirects followed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Observe records a finished navigation.
func (c *Collector) Observe(nav *vgrouter.Navigation) {
	trigger := nav.Trigger.String()
	c.navigations.WithLabelValues(trigger, Result(nav.Err)).Inc()
	c.duration.WithLabelValues(trigger).Observe(nav.Duration.Seconds())
	if nav.Redirects > 0 {
		c.redirects.Add(float64(nav.Redirects))
	}
}

// Attach observes every navigation of r.  It returns a function that detaches
// the collector.
func (c *Collector) Attach(r *vgrouter.Router) (detach func()) {
	return r.AfterEach(c.Observe)
}

// Result classifies a navigation error into a result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultCommitted
	case errors.Is(err, vgrouter.ErrGuardFailure):
		return ResultGuardFailure
	case errors.Is(err, vgrouter.ErrAborted):
		switch vgrouter.AbortReason(err) {
		case vgrouter.AbortSuperseded:
			return ResultSuperseded
		case vgrouter.AbortTimeout:
			return ResultTimeout
		}
		return ResultAborted
	case errors.Is(err, vgrouter.ErrNoMatch):
		return ResultNoMatch
	case errors.Is(err, vgrouter.ErrUnknownRouteName):
		return ResultUnknownRoute
	case errors.Is(err, vgrouter.ErrTooManyRedirects):
		return ResultTooManyRedirects
	}
	return ResultError
}
