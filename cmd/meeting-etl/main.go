package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meeting-etl/internal/config"
	"meeting-etl/internal/logger"
	"meeting-etl/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化Logger
	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "meeting-etl")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	lg.Info("Starting meeting-etl",
		zap.String("input", cfg.Input.Path),
		zap.String("output", cfg.Output.Path),
		zap.String("speaker_fallback", cfg.Identity.SpeakerFallback),
		zap.String("identity_key", cfg.Identity.KeyPolicy),
		zap.Bool("postgres_sink", cfg.Sinks.PostgresEnabled),
		zap.Bool("redis_report", cfg.Report.RedisEnabled),
	)

	// 收到中断信号时取消运行，尚未开始的写出不会执行
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	etl, err := service.NewETLService(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("Failed to create ETL service", zap.Error(err))
	}

	report, err := etl.Run(ctx)
	etl.Stop()
	if err != nil {
		lg.Fatal("ETL run failed", zap.Error(err))
	}

	lg.Info("Output written",
		zap.String("path", cfg.Output.Path),
		zap.Int("users", report.Users),
		zap.Int("rejected_speakers", report.RejectedSpeakers),
		zap.Int("arbitrary_speakers", report.ArbitrarySpeakers),
	)
}
