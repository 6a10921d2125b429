package ecs

// DefaultMaxEntities is the live-entity limit used by DefaultConfig.
const DefaultMaxEntities = 5000

// Config holds the construction parameters of a World.
type Config struct {
	// MaxEntities bounds the number of simultaneously live entities.
	MaxEntities int
	// Logger receives registration and capacity diagnostics. Nil discards them.
	Logger Logger
}

// DefaultConfig returns a Config with DefaultMaxEntities and no logger.
func DefaultConfig() Config {
	return Config{
		MaxEntities: DefaultMaxEntities,
	}
}
