package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置（可选的 PostgreSQL 数仓输出）
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Schema   string
	MaxConns int // DB_MAX_CONNS
	MaxIdle  int // DB_MAX_IDLE
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config ETL 任务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// 输入输出
	Input struct {
		Path  string // 源表，如 "source/raw_data.xlsx"
		Sheet string // 为空时读取第一个工作表
	}
	Output struct {
		Path string // 结果工作簿，如 "output/final_data.xlsx"
	}

	// 身份解析配置
	Identity struct {
		SpeakerFallback string  // "reject"（默认）或 "arbitrary"（兼容旧行为）
		KeyPolicy       string  // "email_name"（默认）或 "email"
		FuzzyThreshold  float64 // 模糊匹配阈值（严格大于），取值 (0, 1]，默认 0.7
	}

	// 可选输出
	Sinks struct {
		PostgresEnabled bool
	}
	Report struct {
		RedisEnabled bool
		Stream       string // 运行报告流，如 "etl:run:reports"
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Input.Path = getEnv("INPUT_PATH", "source/raw_data.xlsx")
	cfg.Input.Sheet = getEnv("INPUT_SHEET", "")
	cfg.Output.Path = getEnv("OUTPUT_PATH", "output/final_data.xlsx")

	cfg.Identity.SpeakerFallback = getEnv("SPEAKER_FALLBACK", "reject")
	switch cfg.Identity.SpeakerFallback {
	case "reject", "arbitrary":
	default:
		return nil, fmt.Errorf("invalid SPEAKER_FALLBACK %q (want reject or arbitrary)", cfg.Identity.SpeakerFallback)
	}
	cfg.Identity.KeyPolicy = getEnv("IDENTITY_KEY", "email_name")
	switch cfg.Identity.KeyPolicy {
	case "email_name", "email":
	default:
		return nil, fmt.Errorf("invalid IDENTITY_KEY %q (want email_name or email)", cfg.Identity.KeyPolicy)
	}
	threshold, err := strconv.ParseFloat(getEnv("FUZZY_THRESHOLD", "0.7"), 64)
	// 0 保留为"未设置"，取值范围 (0, 1]
	if err != nil || threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid FUZZY_THRESHOLD %q", os.Getenv("FUZZY_THRESHOLD"))
	}
	cfg.Identity.FuzzyThreshold = threshold

	cfg.Sinks.PostgresEnabled = getEnv("SINK_POSTGRES_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	if port, err := strconv.Atoi(getEnv("DB_PORT", "5432")); err == nil && port > 0 {
		cfg.Database.Port = port
	}
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "meetings")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.Schema = getEnv("DB_SCHEMA", "public")
	if n, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "4")); err == nil && n > 0 {
		cfg.Database.MaxConns = n
	}
	if n, err := strconv.Atoi(getEnv("DB_MAX_IDLE", "2")); err == nil && n > 0 {
		cfg.Database.MaxIdle = n
	}

	cfg.Report.RedisEnabled = getEnv("REPORT_REDIS_ENABLED", "false") == "true"
	cfg.Report.Stream = getEnv("REPORT_STREAM", "etl:run:reports")
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if db, err := strconv.Atoi(getEnv("REDIS_DB", "0")); err == nil {
		cfg.Redis.DB = db
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
