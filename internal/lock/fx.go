package lock

import (
	"github.com/billablehq/billable/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Module provides the optional redis client and locker. Both are nil when
// REDIS_ADDR is unset; callers must treat a nil Locker as "no external lock".
var Module = fx.Module("lock",
	fx.Provide(NewClient),
	fx.Provide(NewLocker),
)

func NewClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
