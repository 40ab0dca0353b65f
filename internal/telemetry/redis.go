package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisClient.
type RedisOptions struct {
	Host        string
	Port        int
	DB          int
	DialTimeout time.Duration // defaults to one second
}

func (o RedisOptions) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// RedisClient reads JSON-encoded values published by the robot into Redis.
type RedisClient struct {
	logger *log.Logger

	mu   sync.Mutex
	opts RedisOptions
	rdb  *redis.Client

	connected atomic.Bool
}

// NewRedisClient creates a client for the server described by opts. No
// connection is made until the first request.
func NewRedisClient(opts RedisOptions, logger *log.Logger) *RedisClient {
	if logger == nil {
		logger = log.Default()
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = time.Second
	}
	c := &RedisClient{logger: logger, opts: opts}
	c.rdb = c.newRedis()
	return c
}

func (c *RedisClient) newRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         c.opts.addr(),
		DB:           c.opts.DB,
		DialTimeout:  c.opts.DialTimeout,
		ReadTimeout:  c.opts.DialTimeout,
		WriteTimeout: c.opts.DialTimeout,
		MaxRetries:   -1,
	})
}

func (c *RedisClient) client() *redis.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rdb
}

// Keys lists every key using SCAN, sorted.
func (c *RedisClient) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client().Scan(ctx, 0, "*", 256).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, c.fail(err)
	}
	c.connected.Store(true)
	sort.Strings(keys)
	return keys, nil
}

// Raw fetches and decodes the JSON object stored at key.
func (c *RedisClient) Raw(ctx context.Context, key string) (map[string]any, error) {
	data, err := c.client().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, c.fail(err)
	}
	c.connected.Store(true)

	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return value, nil
}

// Latency times a PING.
func (c *RedisClient) Latency(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.client().Ping(ctx).Err(); err != nil {
		return 0, c.fail(err)
	}
	c.connected.Store(true)
	return time.Since(start), nil
}

func (c *RedisClient) Connected() bool {
	return c.connected.Load()
}

// Reconfigure replaces the underlying connection pool when the address
// changes.
func (c *RedisClient) Reconfigure(host string, port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Host == host && c.opts.Port == port {
		return
	}
	old := c.rdb
	c.opts.Host = host
	c.opts.Port = port
	c.rdb = c.newRedis()
	c.connected.Store(false)
	if err := old.Close(); err != nil {
		c.logger.Debug("closing previous redis client", "err", err)
	}
	c.logger.Info("communication client reconfigured", "addr", c.opts.addr())
}

// Close releases the connection pool.
func (c *RedisClient) Close() error {
	c.connected.Store(false)
	return c.client().Close()
}

func (c *RedisClient) fail(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if c.connected.Swap(false) {
		c.logger.Warn("lost connection to robot", "err", err)
	}
	return fmt.Errorf("%w: %v", ErrNotConnected, err)
}
