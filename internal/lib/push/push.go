// Package push fans notifications out to subscribers over Redis pub/sub.
//
// Each topic maps to a channel of the same name. Delivery to devices is
// done by whatever subscribes to the channel.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Message is the envelope published on a topic channel.
type Message struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Publisher is the subset of the Redis client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Client publishes messages to topics.
type Client struct {
	redis Publisher
}

func NewClient(r Publisher) *Client {
	return &Client{redis: r}
}

// Publish sends data to topic and returns the number of subscribers that received it.
func (c *Client) Publish(ctx context.Context, topic string, data any) (int64, error) {
	payload, err := json.Marshal(Message{Topic: topic, Data: data})
	if err != nil {
		return 0, fmt.Errorf("marshal %s message: %w", topic, err)
	}

	receivers, err := c.redis.Publish(ctx, topic, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish to %s: %w", topic, err)
	}
	return receivers, nil
}
