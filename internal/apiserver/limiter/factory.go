package limiter

import (
	"fmt"

	"github.com/campusshield/campusshield/internal/common/config"
)

// NewLimiter creates a limiter based on configuration
func NewLimiter(cfg *config.LimiterConfig) (Limiter, error) {
	base := Config{Limit: cfg.Limit, Window: cfg.Window}
	switch cfg.Type {
	case "", "memory":
		return NewMemoryLimiter(base), nil
	case "redis":
		return NewRedisLimiter(base, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported limiter type: %s", cfg.Type)
	}
}
