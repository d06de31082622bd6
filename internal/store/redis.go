package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the Redis backend writes.
const DefaultRedisPrefix = "pastrypath:"

// Redis is the Redis backend. Blobs are plain string keys, the event log is
// a list of JSON documents and the sequence is an INCR counter.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the Redis server at redisURL and verifies the
// connection with a ping.
func OpenRedis(redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) BlobRepo() BlobRepo   { return &redisBlobRepo{r} }
func (r *Redis) EventRepo() EventRepo { return &redisEventRepo{r} }

// Close closes the client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) blobKey(key string) string { return r.prefix + "blob:" + key }
func (r *Redis) eventsKey() string         { return r.prefix + "events" }
func (r *Redis) sequenceKey() string       { return r.prefix + "sequence" }

type redisBlobRepo struct{ *Redis }

func (r *redisBlobRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.blobKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load blob %q: %w", key, err)
	}
	return data, true, nil
}

func (r *redisBlobRepo) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.blobKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("save blob %q: %w", key, err)
	}
	return nil
}

func (r *redisBlobRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.blobKey(key)).Err(); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

type redisEventRepo struct{ *Redis }

func (r *redisEventRepo) AppendCompletionEvent(ctx context.Context, data CompletionEventData) (int64, error) {
	seq, err := r.client.Incr(ctx, r.sequenceKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	payload, err := json.Marshal(CompletionEvent{Sequence: seq, CompletionEventData: data})
	if err != nil {
		return 0, fmt.Errorf("marshal completion event: %w", err)
	}
	if err := r.client.RPush(ctx, r.eventsKey(), payload).Err(); err != nil {
		return 0, fmt.Errorf("append completion event: %w", err)
	}
	return seq, nil
}

func (r *redisEventRepo) QueryCompletionEvents(ctx context.Context, opts QueryOpts) ([]CompletionEvent, error) {
	raw, err := r.client.LRange(ctx, r.eventsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("query completion events: %w", err)
	}

	var result []CompletionEvent
	for _, item := range raw {
		var ev CompletionEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode completion event: %w", err)
		}
		if !opts.matches(ev.Sequence, ev.Timestamp) {
			continue
		}
		result = append(result, ev)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

func (r *redisEventRepo) ReplaceCompletionEvents(ctx context.Context, data []CompletionEventData) error {
	if err := uniqueEventIDs(data); err != nil {
		return err
	}
	var first int64
	if len(data) > 0 {
		last, err := r.client.IncrBy(ctx, r.sequenceKey(), int64(len(data))).Result()
		if err != nil {
			return fmt.Errorf("reserve sequence: %w", err)
		}
		first = last - int64(len(data)) + 1
	}

	payloads := make([]any, 0, len(data))
	for i, d := range data {
		payload, err := json.Marshal(CompletionEvent{Sequence: first + int64(i), CompletionEventData: d})
		if err != nil {
			return fmt.Errorf("marshal completion event: %w", err)
		}
		payloads = append(payloads, payload)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.eventsKey())
		if len(payloads) > 0 {
			pipe.RPush(ctx, r.eventsKey(), payloads...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace completion events: %w", err)
	}
	return nil
}

func (r *redisEventRepo) ClearCompletionEvents(ctx context.Context) error {
	if err := r.client.Del(ctx, r.eventsKey()).Err(); err != nil {
		return fmt.Errorf("clear completion events: %w", err)
	}
	return nil
}
