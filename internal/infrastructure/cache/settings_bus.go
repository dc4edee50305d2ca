// Package cache keeps gateway instances in agreement about cached settings.
package cache

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/wallee-gateway/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const settingsChangedMessage = "settings_changed"

// SettingsBus broadcasts settings changes over Redis pub/sub so every
// instance drops its cached processor client.
type SettingsBus struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewSettingsBus(cfg config.RedisConfig, logger *slog.Logger) *SettingsBus {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &SettingsBus{client: client, channel: cfg.Channel, logger: logger}
}

func (b *SettingsBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *SettingsBus) Close() error {
	return b.client.Close()
}

func (b *SettingsBus) PublishSettingsChanged(ctx context.Context) error {
	return b.client.Publish(ctx, b.channel, settingsChangedMessage).Err()
}

// Listen calls onChange for every change published by any instance, including
// this one, until ctx is done.
func (b *SettingsBus) Listen(ctx context.Context, onChange func()) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.logger.Info("listening for settings changes", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if msg.Payload == settingsChangedMessage {
				b.logger.Debug("settings changed elsewhere, dropping processor client")
				onChange()
			}
		}
	}
}

// NoopSettingsBus is used when Redis is not configured. A single instance
// invalidates its own client directly.
type NoopSettingsBus struct{}

func (NoopSettingsBus) PublishSettingsChanged(context.Context) error { return nil }

func (NoopSettingsBus) Listen(ctx context.Context, _ func()) error {
	<-ctx.Done()
	return nil
}
