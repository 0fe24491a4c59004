package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/observability"
)

const (
	RideUpdatesChannel = "ride:updates"
	fareConfigKey      = "fare:config"
)

// InitRedis connects and pings. An empty URL disables Redis and returns
// (nil, nil).
func InitRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// FareConfigCache keeps the fare config row in Redis for ttl.
type FareConfigCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFareConfigCache(client *redis.Client, ttl time.Duration) *FareConfigCache {
	return &FareConfigCache{client: client, ttl: ttl}
}

func (c *FareConfigCache) Get(ctx context.Context) (*models.FareConfig, error) {
	data, err := c.client.Get(ctx, fareConfigKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg models.FareConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *FareConfigCache) Set(ctx context.Context, cfg *models.FareConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, fareConfigKey, data, c.ttl).Err()
}

// RedisRideEvents publishes ride events on the ride:updates channel so
// every API instance can relay them to its own sockets.
type RedisRideEvents struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisRideEvents(client *redis.Client, log *slog.Logger) *RedisRideEvents {
	return &RedisRideEvents{client: client, log: log}
}

func (r *RedisRideEvents) RideChanged(ctx context.Context, ev RideEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.ErrorContext(ctx, "failed to encode ride event", "error", err)
		return
	}
	if err := r.client.Publish(ctx, RideUpdatesChannel, data).Err(); err != nil {
		observability.NotificationFailuresTotal.WithLabelValues("redis").Inc()
		r.log.WarnContext(ctx, "failed to publish ride event", "rideId", ev.RideID, "error", err)
	}
}

// RelayRideEvents feeds ride:updates into dst until ctx is done.
func (r *RedisRideEvents) RelayRideEvents(ctx context.Context, dst RideNotifier) error {
	sub := r.client.Subscribe(ctx, RideUpdatesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", RideUpdatesChannel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev RideEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.WarnContext(ctx, "discarding malformed ride event", "error", err)
				continue
			}
			dst.RideChanged(ctx, ev)
		}
	}
}
