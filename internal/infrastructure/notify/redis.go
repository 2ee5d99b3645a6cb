package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"material-tracker/internal/domain/notification"
)

const DefaultChannel = "materials:events"

// RedisBus publishes dashboard events over Redis pub/sub and keeps the
// per-worker seen sets.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	seenTTL time.Duration
	log     *zap.Logger
}

func NewRedisBus(rdb *redis.Client, seenTTL time.Duration, log *zap.Logger) *RedisBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{rdb: rdb, channel: DefaultChannel, seenTTL: seenTTL, log: log}
}

func seenKey(owner string) string { return fmt.Sprintf("materials:seen:%s", owner) }

func (b *RedisBus) Publish(ctx context.Context, e notification.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan notification.Event, error) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	// wait for the subscription confirmation so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan notification.Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var e notification.Event
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					b.log.Warn("drop malformed event", zap.Error(err))
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBus) Seen(ctx context.Context, owner string) (map[string]struct{}, error) {
	ids, err := b.rdb.SMembers(ctx, seenKey(owner)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (b *RedisBus) MarkSeen(ctx context.Context, owner string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := b.rdb.TxPipeline()
	pipe.SAdd(ctx, seenKey(owner), members...)
	if b.seenTTL > 0 {
		pipe.Expire(ctx, seenKey(owner), b.seenTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}
