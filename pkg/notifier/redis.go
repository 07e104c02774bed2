package notifier

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelSwapCreated is the pub/sub channel creation events go out on.
const ChannelSwapCreated = "barter.swaps.created"

type redisNotifier struct {
	client *redis.Client
}

// NewRedis returns a Notifier backed by redis pub/sub.
func NewRedis(redisURL string) (Notifier, error) {
	parsedURL, err := url.Parse(redisURL)
	if err != nil {
		return nil, err
	}
	redisPassword, _ := parsedURL.User.Password()
	client := redis.NewClient(&redis.Options{
		Addr:     parsedURL.Host,
		Password: redisPassword,
		DB:       0, // Use default DB.
	})
	return &redisNotifier{client: client}, nil
}

func (n *redisNotifier) SwapCreated(ctx context.Context, event SwapCreated) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, ChannelSwapCreated, data).Err()
}

func (n *redisNotifier) Subscribe(ctx context.Context) (<-chan SwapCreated, error) {
	pubsub := n.client.Subscribe(ctx, ChannelSwapCreated)
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, err
	}

	events := make(chan SwapCreated, 16)
	go func() {
		defer close(events)
		defer pubsub.Close()
		for {
			select {
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event SwapCreated
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
