package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Dialect 目标数据库方言
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB 关系库封装：进程内只打开一次，导入与分析共用
type DB struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// ParseDSN 根据连接串判断方言，返回 database/sql 驱动名与驱动可识别的 DSN。
// postgres://、postgresql://、postgresql+psycopg2:// 走 pgx，其余视为 SQLite 文件。
func ParseDSN(dsn string) (Dialect, string, string) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres, "pgx", dsn
	}
	if strings.HasPrefix(lower, "postgresql+") {
		if i := strings.Index(dsn, "://"); i > 0 {
			return Postgres, "pgx", "postgresql" + dsn[i:]
		}
	}
	if strings.HasPrefix(lower, "file:") {
		return SQLite, "sqlite3", dsn
	}
	// dsn 参数沿用导入工具的配置（WAL / NORMAL / 忙等待）
	return SQLite, "sqlite3", fmt.Sprintf("file:%s?_cache_size=200000&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=60000&_foreign_keys=off", dsn)
}

// Open 打开并 Ping 数据库
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dialect, driver, driverDSN := ParseDSN(dsn)
	if dialect == SQLite && !strings.HasPrefix(strings.ToLower(strings.TrimSpace(dsn)), "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open(driver, driverDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == SQLite {
		// 单 writer，避免并发写锁
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("database opened", zap.String("dialect", string(dialect)))
	return &DB{db: db, dialect: dialect, logger: logger}, nil
}

func (s *DB) Dialect() Dialect { return s.dialect }

func (s *DB) Close() error { return s.db.Close() }

// quoteIdent 双引号包裹标识符，SQLite 与 PostgreSQL 通用
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *DB) placeholder(i int) string {
	if s.dialect == Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}
