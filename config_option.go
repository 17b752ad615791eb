package activerecord

import (
	"time"

	"github.com/go-gorm/activerecord/events"
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

// ConfigOption use functional option for registry Config.
type ConfigOption func(c *Config)

// WithConnectionResolver set connection resolver.
func WithConnectionResolver(resolver ConnectionResolver) ConfigOption {
	return func(c *Config) {
		c.ConnectionResolver = resolver
	}
}

// WithDispatcher set event dispatcher.
func WithDispatcher(dispatcher events.Dispatcher) ConfigOption {
	return func(c *Config) {
		c.Dispatcher = dispatcher
	}
}

// WithLogger set logger.
func WithLogger(logger logger.Interface) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithNowFunc set now func.
func WithNowFunc(fn func() time.Time) ConfigOption {
	return func(c *Config) {
		c.NowFunc = fn
	}
}

// WithTimeLocation set location of parsed dates.
func WithTimeLocation(loc *time.Location) ConfigOption {
	return func(c *Config) {
		c.TimeLocation = loc
	}
}

// WithDateFormat set fallback date format.
func WithDateFormat(format string) ConfigOption {
	return func(c *Config) {
		c.DateFormat = format
	}
}

// WithNamingStrategy set schema namer.
func WithNamingStrategy(namer schema.Namer) ConfigOption {
	return func(c *Config) {
		c.NamingStrategy = namer
	}
}
