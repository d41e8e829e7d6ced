// Package cache holds expanded listings in Redis so detail reads skip the
// three-level join. Entries are dropped on every mutation that changes them.
//
// Each listing also has a version counter. Invalidate bumps it, and Set only
// writes when the counter still matches the one the reader saw on its miss,
// so a read that raced a mutation cannot put the old detail back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/baharkarakas/roamr-backend/internal/metrics"
	"github.com/baharkarakas/roamr-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "roamr:listing:"
	versionPrefix = "roamr:listing-ver:"

	// versionTTL outlives any in-flight read by a wide margin.
	versionTTL = 24 * time.Hour
)

type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials Redis and checks the connection.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ListingCache{client: client, ttl: ttl}
}

func key(id string) string        { return keyPrefix + id }
func versionKey(id string) string { return versionPrefix + id }

// Get returns ok=false on a miss. The version is what a later Set for the
// same listing must present.
func (c *ListingCache) Get(ctx context.Context, id string) (models.ListingDetail, int64, bool, error) {
	vals, err := c.client.MGet(ctx, key(id), versionKey(id)).Result()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return models.ListingDetail{}, 0, false, err
	}
	version, err := parseVersion(vals[1])
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return models.ListingDetail{}, 0, false, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return models.ListingDetail{}, version, false, nil
	}
	var d models.ListingDetail
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return models.ListingDetail{}, version, false, err
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return d, version, true, nil
}

// Set stores d unless the listing was invalidated after version was read.
// A skipped write is not an error.
func (c *ListingCache) Set(ctx context.Context, d models.ListingDetail, version int64) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	vk := versionKey(d.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(d.ID), data, c.ttl)
			return nil
		})
		return err
	}, vk)
	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		metrics.CacheLookups.WithLabelValues("stale").Inc()
		return nil
	}
	return err
}

var errStale = errors.New("listing cache: version moved")

// Invalidate drops the entries and bumps their versions.
func (c *ListingCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, versionKey(id))
			pipe.Expire(ctx, versionKey(id), versionTTL)
			pipe.Del(ctx, key(id))
		}
		return nil
	})
	return err
}

func parseVersion(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("listing cache version %q: %w", s, err)
	}
	return n, nil
}
