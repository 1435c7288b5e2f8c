package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noticedesk/noticedesk-backend/pkg/logger"
)

// Cache key layout
const (
	prefixQuery = "nd:records:q:"
	keysSetKey  = "nd:records:qkeys"
)

// TTLQuery is the default query cache TTL; record lists change rarely
// between admin actions but must not serve long-stale data.
const TTLQuery = 30 * time.Second

// CachedClient is a read-through query cache in front of another
// Client. Any successful Save or Delete drops every cached query,
// since a record's kind cannot be known from its id alone on delete.
type CachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedClient wraps inner with a redis query cache
func NewCachedClient(inner Client, rdb *redis.Client, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = TTLQuery
	}
	return &CachedClient{inner: inner, rdb: rdb, ttl: ttl}
}

// DialCache connects to the redis query cache and verifies the
// connection. timeout bounds the dial, the ping and every later cache
// call, matching the bounded-call contract of the record store itself.
func DialCache(addr, password string, db, poolSize int, timeout time.Duration) (*redis.Client, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *CachedClient) Query(ctx context.Context, kind Kind, predicates []Predicate, sortKeys []SortKey, limit int) ([]RawRecord, error) {
	key := queryKey(kind, predicates, sortKeys, limit)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []RawRecord
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	records, err := c.inner.Query(ctx, kind, predicates, sortKeys, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		pipe := c.rdb.Pipeline()
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, keysSetKey, key)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.GetLogger().Debug().Err(err).Msg("query cache write failed")
		}
	}
	return records, nil
}

func (c *CachedClient) Fetch(ctx context.Context, id string) (RawRecord, error) {
	return c.inner.Fetch(ctx, id)
}

func (c *CachedClient) Save(ctx context.Context, rec RawRecord) (RawRecord, error) {
	saved, err := c.inner.Save(ctx, rec)
	if err != nil {
		return RawRecord{}, err
	}
	c.invalidate(ctx)
	return saved, nil
}

func (c *CachedClient) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedClient) invalidate(ctx context.Context) {
	keys, err := c.rdb.SMembers(ctx, keysSetKey).Result()
	if err != nil {
		logger.GetLogger().Debug().Err(err).Msg("query cache invalidation failed")
		return
	}
	if len(keys) > 0 {
		c.rdb.Del(ctx, keys...)
	}
	c.rdb.Del(ctx, keysSetKey)
}

func queryKey(kind Kind, predicates []Predicate, sortKeys []SortKey, limit int) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%d|", kind, limit)
	for _, p := range predicates {
		fmt.Fprintf(h, "%s %s %v|", p.Field, p.Op, p.Value)
	}
	for _, s := range sortKeys {
		fmt.Fprintf(h, "%s %t|", s.Field, s.Ascending)
	}
	return prefixQuery + hex.EncodeToString(h.Sum(nil))
}
