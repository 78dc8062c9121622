package redisstream

import (
	"context"
	"fmt"
	"time"

	"meeting-etl/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 报告发布连接参数
const (
	dialTimeout = 5 * time.Second
	poolSize    = 2
)

func clientOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
		PoolSize:    poolSize,
	}
}

// DialReportPublisher 连接 Redis 并确认可用后返回报告发布器；连接失败时客户端已关闭
func DialReportPublisher(ctx context.Context, cfg *config.RedisConfig, stream string, logger *zap.Logger) (*ReportPublisher, error) {
	client := redis.NewClient(clientOptions(cfg))
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to redis", zap.String("addr", cfg.Addr), zap.String("stream", stream))
	return NewReportPublisher(client, stream, logger), nil
}
