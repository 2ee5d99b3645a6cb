package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"material-tracker/internal/domain/actor"
)

var ErrNotFound = errors.New("session not found or expired")

type Session struct {
	Actor     actor.Actor `json:"actor"`
	IssuedAt  int64       `json:"iat"`
	ExpiresAt int64       `json:"exp"`
}

// RedisStore keeps sessions as JSON values with a TTL, plus one set per
// actor so every session of a deleted requester can be revoked at once.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(token string) string      { return fmt.Sprintf("materials:sess:%s", token) }
func actorSetKey(ak string) string { return fmt.Sprintf("materials:actor_sessions:%s", ak) }

func (s *RedisStore) Create(ctx context.Context, token string, a actor.Actor) (*Session, error) {
	now := time.Now()
	sess := &Session{Actor: a, IssuedAt: now.Unix(), ExpiresAt: now.Add(s.ttl).Unix()}
	b, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, s.ttl)
	pipe.SAdd(ctx, actorSetKey(a.Key()), token)
	pipe.Expire(ctx, actorSetKey(a.Key()), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	sess, _ := s.Get(ctx, token)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if sess != nil {
		pipe.SRem(ctx, actorSetKey(sess.Actor.Key()), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAll deletes every session opened by the actor.
func (s *RedisStore) RevokeAll(ctx context.Context, a actor.Actor) error {
	tokens, err := s.rdb.SMembers(ctx, actorSetKey(a.Key())).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, key(t))
	}
	pipe.Del(ctx, actorSetKey(a.Key()))
	_, err = pipe.Exec(ctx)
	return err
}
