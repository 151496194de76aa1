package logger

import (
	"context"
	"errors"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisSlowThreshold 超过该耗时记为慢命令
const redisSlowThreshold = 100 * time.Millisecond

type RedisLoggerHook struct {
	// 以这些前缀开头的 key 在日志中只保留前缀
	maskedPrefixes []string
}

func NewRedisLogger(maskedPrefixes ...string) *RedisLoggerHook {
	return &RedisLoggerHook{maskedPrefixes: maskedPrefixes}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error",
				log.String("addr", addr),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err),
			)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		fields := []any{
			log.String("command", cmd.Name()),
			log.String("key", s.describeKey(cmd)),
			log.Duration("latency", elapsed),
		}

		switch {
		case err != nil && !errors.Is(err, redis.Nil):
			log.ErrorContext(ctx, "Redis Error", append(fields, log.Any("err", err))...)
		case elapsed > redisSlowThreshold:
			log.WarnContext(ctx, "Redis Slow", fields...)
		}
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil {
			log.ErrorContext(ctx, "Redis Pipeline Error",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", time.Since(start)),
				log.Any("err", err))
		}
		return err
	}
}

// describeKey 只记录 key，不记录 value
func (s *RedisLoggerHook) describeKey(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	key, ok := args[1].(string)
	if !ok {
		return ""
	}
	for _, prefix := range s.maskedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return prefix + "***"
		}
	}
	return key
}
