package activerecord

import (
	"time"

	"github.com/go-gorm/activerecord/events"
	"github.com/go-gorm/activerecord/logger"
	"github.com/go-gorm/activerecord/schema"
)

// Config registry config
type Config struct {
	// ConnectionResolver resolves the query collaborator of every model
	ConnectionResolver ConnectionResolver
	// Dispatcher receives model events, events are skipped when nil
	Dispatcher events.Dispatcher
	// Logger traces persistence operations
	Logger logger.Interface
	// NowFunc the function to be used when creating a new timestamp
	NowFunc func() time.Time
	// TimeLocation location of parsed dates
	TimeLocation *time.Location
	// DateFormat storage format of date attributes when neither the definition nor the connection sets one
	DateFormat string
	// NamingStrategy tables, keys and morph columns naming strategy
	NamingStrategy schema.Namer
}

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = logger.Default
	}

	if c.TimeLocation == nil {
		c.TimeLocation = time.UTC
	}

	if c.NowFunc == nil {
		loc := c.TimeLocation
		c.NowFunc = func() time.Time { return time.Now().In(loc) }
	}

	if c.DateFormat == "" {
		c.DateFormat = schema.DefaultDateFormat
	}

	if c.NamingStrategy == nil {
		c.NamingStrategy = schema.NamingStrategy{}
	}
}
