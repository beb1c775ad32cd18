package vgrouter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRedirects is the redirect chain limit used when none is configured.
const DefaultMaxRedirects = 10

// Options configures a Router.
type Options struct {
	// MaxRedirects bounds the number of guard and static redirects a single
	// navigation may follow before failing with ErrTooManyRedirects.
	MaxRedirects int

	// Timeout, if positive, aborts navigations whose guards take longer with
	// reason AbortTimeout.  NavTimeout overrides it per navigation.
	Timeout time.Duration

	// Logger receives navigation logs.  Default: slog.Default().
	Logger *slog.Logger

	// TracerProvider creates the tracer used for navigation spans.
	// Default: otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
}

// Option configures a Router.
type Option func(*Options)

// WithMaxRedirects sets Options.MaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(o *Options) {
		o.MaxRedirects = n
	}
}

// WithTimeout sets Options.Timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithLogger sets Options.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithTracerProvider sets Options.TracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

// WithConfig applies the settings of a Config loaded from the environment.
func WithConfig(c Config) Option {
	return func(o *Options) {
		if c.MaxRedirects > 0 {
			o.MaxRedirects = c.MaxRedirects
		}
		o.Timeout = c.Timeout
	}
}

func defaultOptions() Options {
	return Options{
		MaxRedirects:   DefaultMaxRedirects,
		Logger:         slog.Default(),
		TracerProvider: otel.GetTracerProvider(),
	}
}

// Config holds the router settings that can be supplied through environment
// variables prefixed with VGROUTER_.
type Config struct {
	MaxRedirects int           `env:"MAX_REDIRECTS" envDefault:"10"`
	Timeout      time.Duration `env:"NAV_TIMEOUT" envDefault:"0s"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
}

// LoadConfig reads a .env file from the working directory, if there is one,
// and parses Config from the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	c, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "VGROUTER_"})
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
