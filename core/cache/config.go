package cache

// Config holds configuration for the cache backend.
type Config struct {
	// Driver selects the backend (memory, redis).
	Driver string `mapstructure:"driver" default:"memory"`
	// RedisAddr is the host:port of the redis server.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisPassword authenticates against redis.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the redis logical database.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// Prefix is prepended to every cache key.
	Prefix string `mapstructure:"prefix" default:"krosmoz:"`
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)
