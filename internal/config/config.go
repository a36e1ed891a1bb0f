package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
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

// MonitoringConfig 监测管道配置
type MonitoringConfig struct {
	ChartPoints        int // 卡片图表点数
	HistoryLimit       int // 视图读取的历史行数
	DetailPoints       int // 详情图表点数
	StreamLimit        int // limit 超过该值（或为 0）时流式读取
	DetailDefaultLimit int // 未指定 limit 时的默认值
	SelectionTTL       time.Duration
	DownsampleWorkers  int
}

// Config dashmed-monitoring 配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database   DatabaseConfig
	Redis      RedisConfig
	Monitoring MonitoringConfig
	Log        struct {
		Level  string
		Format string
	}
}

// Load 加载配置：先读取当前目录的 .env（可选），再从环境变量取值
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "dashmed")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	// 降采样阈值必须为正，非正值回退到默认值
	cfg.Monitoring.ChartPoints = parsePositiveInt(getEnv("MONITORING_CHART_POINTS", "120"), 120)
	cfg.Monitoring.HistoryLimit = parseInt(getEnv("MONITORING_HISTORY_LIMIT", "5000"), 5000)
	cfg.Monitoring.DetailPoints = parsePositiveInt(getEnv("MONITORING_DETAIL_POINTS", "5000"), 5000)
	cfg.Monitoring.StreamLimit = parseInt(getEnv("MONITORING_STREAM_LIMIT", "10000"), 10000)
	cfg.Monitoring.DetailDefaultLimit = parseInt(getEnv("MONITORING_DETAIL_DEFAULT_LIMIT", "2000"), 2000)
	ttlDays := parseInt(getEnv("MONITORING_SELECTION_TTL_DAYS", "30"), 30)
	cfg.Monitoring.SelectionTTL = time.Duration(ttlDays) * 24 * time.Hour
	cfg.Monitoring.DownsampleWorkers = parseInt(getEnv("MONITORING_DOWNSAMPLE_WORKERS", "4"), 4)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parsePositiveInt(s string, def int) int {
	if v := parseInt(s, def); v > 0 {
		return v
	}
	return def
}
