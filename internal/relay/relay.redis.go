package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itsatony/homehub/internal/config"
	"github.com/itsatony/homehub/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher is the part of redis.Client the relay needs
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay fans state changes out over Redis pub/sub
type RedisRelay struct {
	client         RedisPublisher
	controlChannel string
	sensorChannel  string
	timeout        time.Duration
	gate           revisionGate
}

// NewRedisRelay creates a relay publishing on the configured channels
func NewRedisRelay(client RedisPublisher, cfg config.RedisConfig, timeout time.Duration) *RedisRelay {
	return &RedisRelay{
		client:         client,
		controlChannel: cfg.ControlChannel,
		sensorChannel:  cfg.SensorChannel,
		timeout:        timeout,
	}
}

// PublishControl publishes c unless a newer revision was already published.
func (r *RedisRelay) PublishControl(ctx context.Context, c models.ControlState) error {
	if !r.gate.admit(c.Revision) {
		return nil
	}
	return r.publish(ctx, r.controlChannel, c)
}

// PublishSensor publishes the latest sensor snapshot
func (r *RedisRelay) PublishSensor(ctx context.Context, s models.SensorSnapshot) error {
	return r.publish(ctx, r.sensorChannel, s)
}

func (r *RedisRelay) publish(ctx context.Context, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", channel, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// ConnectRedis opens a client and verifies the server answers
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}
