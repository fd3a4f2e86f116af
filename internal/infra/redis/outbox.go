package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/nexus/internal/notify"
)

const defaultPrefix = "nexus"

// Outbox queues drafts on a Redis list so a mailer can pick them up later.
type Outbox struct {
	rdb    *redis.Client
	prefix string
}

// NewOutbox creates an outbox on top of client.
func NewOutbox(client *Client, prefix string) *Outbox {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Outbox{rdb: client.rdb, prefix: prefix}
}

// Key helpers
func outboxKey(prefix string) string {
	return fmt.Sprintf("%s:drafts", prefix)
}

// EncodeDraft serialises d the way it is stored in the outbox.
func EncodeDraft(d notify.Draft) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	return data, nil
}

// DecodeDraft is the inverse of EncodeDraft.
func DecodeDraft(data []byte) (notify.Draft, error) {
	var d notify.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return notify.Draft{}, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return d, nil
}

// Send appends d to the tail of the outbox list.
func (o *Outbox) Send(ctx context.Context, d notify.Draft) error {
	data, err := EncodeDraft(d)
	if err != nil {
		return err
	}
	if err := o.rdb.RPush(ctx, outboxKey(o.prefix), data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// Pending returns the number of queued drafts.
func (o *Outbox) Pending(ctx context.Context) (int64, error) {
	n, err := o.rdb.LLen(ctx, outboxKey(o.prefix)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

// Pop removes the oldest draft. found is false when the outbox is empty.
func (o *Outbox) Pop(ctx context.Context) (d notify.Draft, found bool, err error) {
	data, err := o.rdb.LPop(ctx, outboxKey(o.prefix)).Bytes()
	if err == redis.Nil {
		return notify.Draft{}, false, nil
	}
	if err != nil {
		return notify.Draft{}, false, fmt.Errorf("lpop failed: %w", err)
	}
	d, err = DecodeDraft(data)
	if err != nil {
		return notify.Draft{}, false, err
	}
	return d, true, nil
}
