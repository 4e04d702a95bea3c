package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	DatabaseURL   string // SQLite 路径/file: DSN，或 postgres:// 连接串
	SourceDir     string // 原始 CSV 目录
	ResultsDir    string // CSV/XLSX 报表目录
	ChartsDir     string // PNG 图表目录
	RetentionDays int
	LogLevel      string

	RedisAddr     string // 为空时不上报
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

const (
	defaultDatabaseURL   = "data/linkedin_jobs.db"
	defaultSourceDir     = "archive"
	defaultResultsDir    = "results"
	defaultChartsDir     = "charts"
	defaultRetentionDays = 7
	defaultRedisKey      = "careerflow"
)

// Load 加载配置：envPath 指向的 .env 文件可选，进程环境变量优先。
func Load(envPath string) (*Config, error) {
	if strings.TrimSpace(envPath) != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	days := getEnvInt("RETENTION_DAYS", defaultRetentionDays)
	if days < 0 {
		days = defaultRetentionDays
	}

	return &Config{
		DatabaseURL:   getEnvString("DATABASE_URL", defaultDatabaseURL),
		SourceDir:     getEnvString("SOURCE_DIR", defaultSourceDir),
		ResultsDir:    getEnvString("RESULTS_DIR", defaultResultsDir),
		ChartsDir:     getEnvString("CHARTS_DIR", defaultChartsDir),
		RetentionDays: days,
		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisKey:      getEnvString("REDIS_KEY", defaultRedisKey),
	}, nil
}

// RedactedDatabaseURL 隐去连接串中的账号密码，便于打印
func (c *Config) RedactedDatabaseURL() string {
	dsn := c.DatabaseURL
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}
