package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

// Publisher fans a message out to every live connection of a user.
type Publisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// UserUpdatesChannel is the redis pub/sub channel the websocket hub listens on.
func UserUpdatesChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

// PublishUpdate is best effort; failures are logged and dropped.
func (p *RedisPublisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "marshal ws message", "type", msg.Type, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, UserUpdatesChannel(userID), string(data)).Err(); err != nil {
		slog.WarnContext(ctx, "publish user update", "user_id", userID, "error", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishUpdate(context.Context, uuid.UUID, models.WSMessage) {}
