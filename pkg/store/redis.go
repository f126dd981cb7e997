package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Addr is the server address for single node mode.
	// Examples: "localhost:6379", "redis.example.com:6379"
	Addr string `yaml:"addr"`
	// ClusterAddrs enables cluster mode when set.
	ClusterAddrs []string      `yaml:"cluster_addrs"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	KeyPrefix    string        `yaml:"key_prefix"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// ScanCount is the COUNT hint passed to SCAN when listing.
	ScanCount int64 `yaml:"scan_count"`
}

// DefaultRedisConfig returns settings for a local Redis server.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		KeyPrefix:    "statement:template:",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		ScanCount:    100,
	}
}

// RedisStore keeps templates as JSON strings under a key prefix.
type RedisStore struct {
	client rueidis.Client
	config RedisConfig
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	var initAddress []string
	if len(config.ClusterAddrs) > 0 {
		initAddress = config.ClusterAddrs
	} else if config.Addr != "" {
		initAddress = []string{config.Addr}
	} else {
		return nil, fmt.Errorf("store: redis: no addresses configured (set Addr or ClusterAddrs)")
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.ScanCount <= 0 {
		config.ScanCount = 100
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      initAddress,
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("store: redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: redis: failed to ping server: %w", err)
	}

	return &RedisStore{client: client, config: config, now: time.Now}, nil
}

// Close releases the client connections.
func (r *RedisStore) Close() error {
	r.client.Close()
	return nil
}

// Ping checks that the server is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("store: redis ping: %w", err)
	}
	return nil
}

func (r *RedisStore) key(name string) string {
	return r.config.KeyPrefix + name
}

// Get returns the template stored under name.
func (r *RedisStore) Get(ctx context.Context, name string) (Template, error) {
	if err := ValidateName(name); err != nil {
		return Template{}, err
	}

	resp := r.client.Do(ctx, r.client.B().Get().Key(r.key(name)).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return Template{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Template{}, fmt.Errorf("store: redis get: %w", err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return Template{}, fmt.Errorf("store: redis get: failed to read response: %w", err)
	}

	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return Template{}, fmt.Errorf("store: redis get: failed to unmarshal: %w", err)
	}
	return tmpl, nil
}

// Put stores tmpl, replacing any template with the same name.
func (r *RedisStore) Put(ctx context.Context, tmpl Template) error {
	if err := tmpl.normalize(); err != nil {
		return err
	}
	tmpl.Builtin = false
	tmpl.UpdatedAt = r.now().UTC()

	data, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("store: redis set: failed to marshal: %w", err)
	}

	cmd := r.client.B().Set().Key(r.key(tmpl.Name)).Value(string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store: redis set: %w", err)
	}
	return nil
}

// Delete removes the template stored under name.
func (r *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	n, err := r.client.Do(ctx, r.client.B().Del().Key(r.key(name)).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("store: redis delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// List walks the key prefix with SCAN and fetches the values in one
// pipelined batch.
func (r *RedisStore) List(ctx context.Context) ([]Template, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := r.client.B().Scan().Cursor(cursor).Match(r.config.KeyPrefix + "*").Count(r.config.ScanCount).Build()
		entry, err := r.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("store: redis scan: %w", err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return []Template{}, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = r.client.B().Get().Key(key).Build()
	}

	out := make([]Template, 0, len(keys))
	for i, resp := range r.client.DoMulti(ctx, cmds...) {
		data, err := resp.AsBytes()
		if err != nil {
			// Deleted between SCAN and GET.
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, fmt.Errorf("store: redis get: key %s: %w", keys[i], err)
		}
		var tmpl Template
		if err := json.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("store: redis get: key %s: failed to unmarshal: %w", keys[i], err)
		}
		out = append(out, tmpl)
	}

	sortByName(out)
	return out, nil
}
