package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	task "github.com/example/task-service/domain/task"
)

// indexedFields are the secondary indexes every backend maintains.
var indexedFields = []IndexField{IndexAssignee, IndexStatus, IndexPriority}

// RedisStore is the production TaskStore. Task records are JSON values under
// task:<id>; every id is also a member of the "all" sorted set and of one
// sorted set per indexed attribute value, all with score zero so that
// ZRANGEBYLEX walks members in id order. Pagination resumes from the last
// id seen, giving exact page sizes and a stable cursor.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a store on top of an existing Redis client.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisStore) taskKey(id string) string {
	return r.keyPrefix + "task:" + id
}

func (r *RedisStore) allKey() string {
	return r.keyPrefix + "tasks:all"
}

func (r *RedisStore) indexKey(field IndexField, value string) string {
	return fmt.Sprintf("%sidx:%s:%s", r.keyPrefix, field, value)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", task.ErrStoreUnavailable, err)
}

// Get returns the task with the given id.
func (r *RedisStore) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.client.Get(ctx, r.taskKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, task.ErrNotFound
		}
		return nil, storeErr(err)
	}

	var t task.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, storeErr(err)
	}
	return &t, nil
}

// Put stores the task and reconciles its index memberships against the
// previous record, if any.
func (r *RedisStore) Put(ctx context.Context, t *task.Task) error {
	prev, err := r.Get(ctx, t.ID)
	if err != nil && !errors.Is(err, task.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return storeErr(err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.taskKey(t.ID), data, 0)
	pipe.ZAdd(ctx, r.allKey(), redis.Z{Member: t.ID})

	for _, field := range indexedFields {
		newValue := indexValue(t, field)
		if prev != nil {
			if oldValue := indexValue(prev, field); oldValue != "" && oldValue != newValue {
				pipe.ZRem(ctx, r.indexKey(field, oldValue), t.ID)
			}
		}
		if newValue != "" {
			pipe.ZAdd(ctx, r.indexKey(field, newValue), redis.Z{Member: t.ID})
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// Delete removes the task and its index memberships.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	prev, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.taskKey(id))
	pipe.ZRem(ctx, r.allKey(), id)
	for _, field := range indexedFields {
		if value := indexValue(prev, field); value != "" {
			pipe.ZRem(ctx, r.indexKey(field, value), id)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// QueryIndex returns up to limit tasks whose indexed field equals value.
func (r *RedisStore) QueryIndex(ctx context.Context, field IndexField, value string, limit int, startKey Key) (Page, error) {
	return r.page(ctx, r.indexKey(field, value), limit, startKey)
}

// Scan returns up to limit tasks from the full store.
func (r *RedisStore) Scan(ctx context.Context, limit int, startKey Key) (Page, error) {
	return r.page(ctx, r.allKey(), limit, startKey)
}

func (r *RedisStore) page(ctx context.Context, setKey string, limit int, startKey Key) (Page, error) {
	lastID, err := decodeKeysetKey(startKey)
	if err != nil {
		return Page{}, err
	}

	min := "-"
	if lastID != "" {
		min = "(" + lastID
	}

	// One member beyond the page distinguishes a full final page from a
	// continued one, so an exhausted listing never hands out a key.
	ids, err := r.client.ZRangeByLex(ctx, setKey, &redis.ZRangeBy{
		Min:   min,
		Max:   "+",
		Count: int64(limit + 1),
	}).Result()
	if err != nil {
		return Page{}, storeErr(err)
	}
	if len(ids) == 0 {
		return Page{}, nil
	}
	more := len(ids) > limit
	if more {
		ids = ids[:limit]
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.taskKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return Page{}, storeErr(err)
	}

	var page Page
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Record deleted between the index read and the value fetch.
			continue
		}
		var t task.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return Page{}, storeErr(err)
		}
		page.Tasks = append(page.Tasks, &t)
	}

	if more {
		page.NextKey = encodeKeysetKey(ids[len(ids)-1])
	}
	return page, nil
}
