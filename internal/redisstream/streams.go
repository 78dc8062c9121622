package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamValues 把任意值转换为 Redis Streams 字段（字符串）
func StreamValues(values map[string]interface{}) (map[string]interface{}, error) {
	streamValues := make(map[string]interface{}, len(values))
	for k, v := range values {
		var strValue string
		switch val := v.(type) {
		case string:
			strValue = val
		case []byte:
			strValue = string(val)
		case int:
			strValue = strconv.Itoa(val)
		case int64:
			strValue = strconv.FormatInt(val, 10)
		case float64:
			strValue = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(val)
		default:
			// 其他类型 JSON 序列化
			jsonBytes, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
			}
			strValue = string(jsonBytes)
		}
		streamValues[k] = strValue
	}
	return streamValues, nil
}

// PublishToStream 发布消息到 Redis Streams（XADD）
func PublishToStream(ctx context.Context, client *redis.Client, stream string, values map[string]interface{}) (string, error) {
	streamValues, err := StreamValues(values)
	if err != nil {
		return "", err
	}
	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: streamValues,
	}).Result()
}

// ReportPublisher 把运行报告发布到 Redis Streams
type ReportPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewReportPublisher 创建运行报告发布器
func NewReportPublisher(client *redis.Client, stream string, logger *zap.Logger) *ReportPublisher {
	return &ReportPublisher{client: client, stream: stream, logger: logger}
}

// Publish 以 {"data": JSON, "timestamp": unix} 形式发布
func (p *ReportPublisher) Publish(ctx context.Context, report interface{}) error {
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	id, err := PublishToStream(ctx, p.client, p.stream, map[string]interface{}{
		"data":      jsonBytes,
		"timestamp": time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish report to %s: %w", p.stream, err)
	}
	p.logger.Info("Run report published", zap.String("stream", p.stream), zap.String("id", id))
	return nil
}

// Close 关闭Redis连接
func (p *ReportPublisher) Close() error {
	return p.client.Close()
}
