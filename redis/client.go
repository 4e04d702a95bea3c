package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"careerflow/config"
	"careerflow/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const historyLimit = 50

// Client Redis 客户端封装，用于上报运行快照
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient 创建 Redis 客户端；未配置 REDIS_ADDR 时返回 nil, nil，表示不上报
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil || cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{
		rdb:    rdb,
		prefix: cfg.RedisKey,
	}, nil
}

// LatestKey 某阶段最新快照的 key
func (c *Client) LatestKey(stage model.Stage) string {
	return fmt.Sprintf("%s:%s:latest", c.prefix, stage)
}

// HistoryKey 某阶段历史快照列表的 key
func (c *Client) HistoryKey(stage model.Stage) string {
	return fmt.Sprintf("%s:%s:history", c.prefix, stage)
}

// Upload 上传运行快照：覆盖 latest，并追加到 history（保留最近 50 条）。nil Client 不做任何事。
func (c *Client) Upload(ctx context.Context, snap *model.RunSnapshot) error {
	if c == nil || snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.LatestKey(snap.Stage), string(data), 0)
		pipe.LPush(ctx, c.HistoryKey(snap.Stage), string(data))
		pipe.LTrim(ctx, c.HistoryKey(snap.Stage), 0, historyLimit-1)
		return nil
	})
	return err
}

// Close 关闭连接
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Publish 按配置上报一次快照。未配置 Redis 时直接返回；连接或写入失败只记日志，不影响调用方。
func Publish(ctx context.Context, cfg *config.Config, logger *zap.Logger, snap *model.RunSnapshot) {
	c, err := NewClient(cfg)
	if err != nil {
		logger.Warn("snapshot not published", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return
	}
	if c == nil {
		return
	}
	defer c.Close()
	if err := c.Upload(ctx, snap); err != nil {
		logger.Warn("snapshot upload failed", zap.String("key", c.LatestKey(snap.Stage)), zap.Error(err))
		return
	}
	logger.Info("snapshot published", zap.String("key", c.LatestKey(snap.Stage)), zap.String("run_id", snap.RunID))
}
