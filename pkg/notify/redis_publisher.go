package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Topics published by the coordinator.
const (
	TopicProducts = "products"
	TopicUsers    = "users"
	TopicFeed     = "feed"
	TopicMessages = "messages"
)

// ChangedPayload is the only message published; subscribers re-read state.
const ChangedPayload = "changed"

// RedisPublisherConfig configures a RedisPublisher.
type RedisPublisherConfig struct {
	Addr     string
	Password string
	Prefix   string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// RedisPublisher fans store change events out over Redis pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewRedisPublisher(cfg RedisPublisherConfig) (*RedisPublisher, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr required")
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "giftem:events"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Password,
		}),
		prefix:  prefix,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Channel returns the pub/sub channel for topic.
func (p *RedisPublisher) Channel(topic string) string {
	return fmt.Sprintf("%s:%s", p.prefix, topic)
}

// Publish sends the change marker for topic.
func (p *RedisPublisher) Publish(ctx context.Context, topic string) error {
	return p.client.Publish(ctx, p.Channel(topic), ChangedPayload).Err()
}

// Listener adapts the publisher to a store listener. Failures are logged,
// never returned to the mutating caller.
func (p *RedisPublisher) Listener(topic string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.Publish(ctx, topic); err != nil {
			p.logger.Warn("publish change event failed", "topic", topic, "err", err)
		}
	}
}

// Close releases the Redis connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
