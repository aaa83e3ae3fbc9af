package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mousewarriors/SEIM-Project/internal/model"
)

// Redis key layout. One key per state blob, JSON encoded.
const (
	keyRules    = "socrange:state:rules"
	keyAlerts   = "socrange:state:alerts"
	keyPlaybook = "socrange:state:playbook"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr         string        `json:"addr"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	PoolSize     int           `json:"pool_size"`
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	}
}

// RedisStore is a Redis-backed StateStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil // absent key leaves v at its zero value
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) SaveRules(ctx context.Context, rules []model.Rule) error {
	return r.setJSON(ctx, keyRules, rules)
}

func (r *RedisStore) LoadRules(ctx context.Context) ([]model.Rule, error) {
	var rules []model.Rule
	if err := r.getJSON(ctx, keyRules, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RedisStore) SaveAlerts(ctx context.Context, alerts []model.LiveAlert) error {
	return r.setJSON(ctx, keyAlerts, alerts)
}

func (r *RedisStore) LoadAlerts(ctx context.Context) ([]model.LiveAlert, error) {
	var alerts []model.LiveAlert
	if err := r.getJSON(ctx, keyAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *RedisStore) SavePlaybook(ctx context.Context, rec PlaybookRecord) error {
	return r.setJSON(ctx, keyPlaybook, rec)
}

func (r *RedisStore) LoadPlaybook(ctx context.Context) (PlaybookRecord, error) {
	var rec PlaybookRecord
	if err := r.getJSON(ctx, keyPlaybook, &rec); err != nil {
		return PlaybookRecord{}, err
	}
	return rec, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
