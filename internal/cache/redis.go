package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/service"
)

const eventsChannel = "chatx:events"

// Client wraps redis for cross-instance event fan-out. Each instance
// publishes its mutations' events and subscribes to re-broadcast events from
// the others into its own websocket hub.
type Client struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

func NewRedis(ctx context.Context, addr, password string, db int, log *zap.SugaredLogger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Infow("redis connected", "addr", addr)
	return &Client{rdb: rdb, log: log}, nil
}

// Notify implements service.Notifier by publishing the event on the shared
// channel. Best-effort: failures are logged, never surfaced to the mutation.
func (c *Client) Notify(ctx context.Context, ev service.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		c.log.Errorw("marshal event failed", "kind", ev.Kind, "error", err)
		return
	}
	if err := c.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
		c.log.Warnw("redis publish failed", "kind", ev.Kind, "error", err)
	}
}

// Subscribe delivers events published by other instances to handler until ctx
// is cancelled.
func (c *Client) Subscribe(ctx context.Context, handler func(service.Event)) {
	sub := c.rdb.Subscribe(ctx, eventsChannel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev service.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				c.log.Warnw("bad event payload", "error", err)
				continue
			}
			handler(ev)
		}
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
