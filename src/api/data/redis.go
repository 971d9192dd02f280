package data

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fan-arena/arena-gov/src/ledger"
)

const (
	noncePrefix = "nonce:"

	// StreamEvents carries ledger activity for external observers
	// (notifier, activity feed). Delivery is at-most-once.
	StreamEvents = "arenagov.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+addr).Result()
}

// ForwardEvents copies bus events onto the Redis stream until the
// context is cancelled or the channel closes. Publish failures are
// logged and dropped; the ledger never retries event delivery.
func ForwardEvents(ctx context.Context, rdb *redis.Client, events <-chan ledger.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt.Data)
			if err != nil {
				log.Printf("event marshal: %v", err)
				continue
			}
			err = rdb.XAdd(ctx, &redis.XAddArgs{
				Stream: StreamEvents,
				Values: map[string]interface{}{
					"type":    string(evt.Type),
					"ts":      evt.Timestamp.Unix(),
					"payload": string(payload),
				},
			}).Err()
			if err != nil {
				log.Printf("event publish: %v", err)
			}
		}
	}
}
