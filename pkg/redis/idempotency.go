package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyStateProcessing = "processing"
	idempotencyStateDone       = "done"
)

// IdempotencyRecord is the state stored under an idempotency key.
// Done is false while the first request is still being handled.
type IdempotencyRecord struct {
	Done        bool
	Status      int
	ContentType string
	Body        []byte
}

// Idempotency remembers responses to keyed requests so retries replay them.
type Idempotency struct {
	client    *redis.Client
	prefix    string
	lock      time.Duration
	retention time.Duration
}

// NewIdempotency holds a reservation for lock and a completed response for retention.
func NewIdempotency(c *redis.Client, prefix string, lock, retention time.Duration) *Idempotency {
	return &Idempotency{client: c, prefix: prefix, lock: lock, retention: retention}
}

func (i *Idempotency) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", i.prefix, key)
}

// Reserve claims key for the caller. When the key was already claimed it
// returns false and the existing record.
func (i *Idempotency) Reserve(ctx context.Context, key string) (bool, *IdempotencyRecord, error) {
	redisKey := i.redisKey(key)

	var claimed *redis.BoolCmd
	var fields *redis.MapStringStringCmd
	_, err := i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		claimed = pipe.HSetNX(ctx, redisKey, "state", idempotencyStateProcessing)
		pipe.ExpireNX(ctx, redisKey, i.lock)
		fields = pipe.HGetAll(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if claimed.Val() {
		return true, nil, nil
	}

	values := fields.Val()
	record := &IdempotencyRecord{Done: values["state"] == idempotencyStateDone}
	if record.Done {
		record.Status, _ = strconv.Atoi(values["status"])
		record.ContentType = values["content_type"]
		record.Body = []byte(values["body"])
	}
	return false, record, nil
}

// Complete stores the response for key and keeps it for the retention period.
func (i *Idempotency) Complete(ctx context.Context, key string, record *IdempotencyRecord) error {
	redisKey := i.redisKey(key)
	_, err := i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey,
			"state", idempotencyStateDone,
			"status", strconv.Itoa(record.Status),
			"content_type", record.ContentType,
			"body", string(record.Body),
		)
		pipe.Expire(ctx, redisKey, i.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release drops the reservation so the request can be retried.
func (i *Idempotency) Release(ctx context.Context, key string) error {
	if err := i.client.Del(ctx, i.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
