package queue

import (
	"strings"

	"github.com/sportline-next/internal/config"
	"github.com/sportline-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端，队列未启用时所有入队调用为空操作
func NewClient(cfg *config.QueueConfig, redisCfg *config.RedisConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(redisCfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSecurityNotice 推送安全提醒邮件任务
func (c *Client) EnqueueSecurityNotice(payload SecurityNoticePayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewSecurityNoticeTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig, redisCfg *config.RedisConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(redisCfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
}

func buildRedisOpt(redisCfg *config.RedisConfig) asynq.RedisClientOpt {
	addr := "127.0.0.1:6379"
	password := ""
	db := 0
	if redisCfg != nil {
		if strings.TrimSpace(redisCfg.Addr) != "" {
			addr = strings.TrimSpace(redisCfg.Addr)
		}
		password = redisCfg.Password
		db = redisCfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
}
