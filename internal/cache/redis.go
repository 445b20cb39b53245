package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss возвращается, когда ключа нет в кеше
var ErrMiss = errors.New("cache miss")

const (
	roleKeyPrefix = "showpro:role:"
	dashboardKey  = "showpro:dashboard:"
)

type Config struct {
	Addr         string
	Password     string
	DB           int
	RoleTTL      time.Duration
	DashboardTTL time.Duration
}

type RedisClient struct {
	client       *redis.Client
	roleTTL      time.Duration
	dashboardTTL time.Duration
}

func NewRedisClient(cfg Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)

	return &RedisClient{
		client:       rdb,
		roleTTL:      cfg.RoleTTL,
		dashboardTTL: cfg.DashboardTTL,
	}, nil
}

// GetRole возвращает закешированную роль пользователя
func (r *RedisClient) GetRole(ctx context.Context, userID string) (string, error) {
	role, err := r.client.Get(ctx, roleKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("cache lookup error: %w", err)
	}
	return role, nil
}

func (r *RedisClient) SetRole(ctx context.Context, userID, role string) error {
	if err := r.client.Set(ctx, roleKeyPrefix+userID, role, r.roleTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache role: %w", err)
	}
	return nil
}

func (r *RedisClient) InvalidateRole(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, roleKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate role: %w", err)
	}
	return nil
}

// GetDashboard читает сводку по ключу и раскладывает JSON в dest
func (r *RedisClient) GetDashboard(ctx context.Context, key string, dest any) error {
	raw, err := r.client.Get(ctx, dashboardKey+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache lookup error: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("invalid cached dashboard: %w", err)
	}
	return nil
}

func (r *RedisClient) SetDashboard(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}
	if err := r.client.Set(ctx, dashboardKey+key, raw, r.dashboardTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache dashboard: %w", err)
	}
	return nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
