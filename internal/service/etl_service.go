package service

import (
	"context"
	"fmt"
	"time"

	"meeting-etl/internal/config"
	"meeting-etl/internal/database"
	"meeting-etl/internal/identity"
	"meeting-etl/internal/models"
	"meeting-etl/internal/redisstream"
	"meeting-etl/internal/sink"
	"meeting-etl/internal/source"

	"go.uber.org/zap"
)

// TableWriter 输出表写入目标（工作簿、数据库）
type TableWriter interface {
	WriteTables(ctx context.Context, tables []models.Table) error
}

// ReportPublisher 运行报告发布目标
type ReportPublisher interface {
	Publish(ctx context.Context, report interface{}) error
}

// ETLService 通讯记录星型模型 ETL 任务
type ETLService struct {
	config    *config.Config
	logger    *zap.Logger
	loader    *source.ExcelLoader
	writers   []TableWriter
	publisher ReportPublisher
	options   Options
	closers   []func() error
}

// New 使用给定的输出和报告发布器创建服务
func New(cfg *config.Config, logger *zap.Logger, writers []TableWriter, publisher ReportPublisher) (*ETLService, error) {
	policy, err := identity.NewKeyPolicy(cfg.Identity.KeyPolicy)
	if err != nil {
		return nil, err
	}
	return &ETLService{
		config:    cfg,
		logger:    logger,
		loader:    source.NewExcelLoader(logger),
		writers:   writers,
		publisher: publisher,
		options: Options{
			SpeakerFallback: identity.SpeakerFallback(cfg.Identity.SpeakerFallback),
			KeyPolicy:       policy,
			FuzzyThreshold:  cfg.Identity.FuzzyThreshold,
		},
	}, nil
}

// NewETLService 按配置创建服务：工作簿输出必选，PostgreSQL 与 Redis 报告可选
func NewETLService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ETLService, error) {
	writers := []TableWriter{sink.NewExcelWriter(cfg.Output.Path, logger)}
	var closers []func() error

	if cfg.Sinks.PostgresEnabled {
		d, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() error { return database.Close(d) })
		writers = append(writers, sink.NewPostgresWriter(d, cfg.Database.Schema, logger))
	}

	var publisher ReportPublisher
	if cfg.Report.RedisEnabled {
		p, err := redisstream.DialReportPublisher(ctx, &cfg.Redis, cfg.Report.Stream, logger)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, p.Close)
		publisher = p
	}

	s, err := New(cfg, logger, writers, publisher)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// Run 读取输入、构建全部表、写入输出并发布报告。
// 输入错误直接返回，此时不会写出任何输出。
func (s *ETLService) Run(ctx context.Context) (*Report, error) {
	started := time.Now()

	records, err := s.loader.LoadFile(s.config.Input.Path, s.config.Input.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to load input: %w", err)
	}

	result, err := Transform(records, s.options, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to transform records: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, w := range s.writers {
		if err := w.WriteTables(ctx, result.Tables); err != nil {
			return nil, err
		}
	}

	report := result.Report
	report.Input = s.config.Input.Path
	report.StartedAt = started
	report.FinishedAt = time.Now()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report); err != nil {
			s.logger.Error("Failed to publish run report", zap.Error(err))
		}
	}

	s.logger.Info("ETL run completed",
		zap.Int("records", report.Records),
		zap.Int("users", report.Users),
		zap.Int("bridge_rows", report.BridgeRows),
		zap.Duration("elapsed", report.FinishedAt.Sub(started)),
	)
	return report, nil
}

// Stop 释放数据库与Redis连接
func (s *ETLService) Stop() error {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Error("Error closing connection", zap.Error(err))
		}
	}
	return nil
}
