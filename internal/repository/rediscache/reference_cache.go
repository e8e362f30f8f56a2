// Package rediscache shares resolved reference records between bot
// instances through redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/pkg/ai/reference"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quran-irc-bot:"

type ReferenceCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

var _ contract.IReferenceCache = (*ReferenceCache)(nil)

func NewReferenceCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *ReferenceCache {
	return &ReferenceCache{rdb: rdb, ttl: ttl, logger: log}
}

// NewClient parses url, falling back to treating it as a bare address.
func NewClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{
			Addr: url,
		}
	}
	return redis.NewClient(opt)
}

func surahKey(id int) string {
	return fmt.Sprintf("%ssurah:%d", keyPrefix, id)
}

func verseKey(table string, ref reference.Reference) string {
	return fmt.Sprintf("%sverse:%s:%d:%d", keyPrefix, table, ref.Collection, ref.Item)
}

func (c *ReferenceCache) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug(logger.ModuleStorage, "Redis cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn(logger.ModuleStorage, "Dropping undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

func (c *ReferenceCache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug(logger.ModuleStorage, "Redis cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (c *ReferenceCache) GetSurah(ctx context.Context, id int) (*entity.Surah, bool) {
	var s entity.Surah
	if !c.get(ctx, surahKey(id), &s) {
		return nil, false
	}
	return &s, true
}

func (c *ReferenceCache) SetSurah(ctx context.Context, surah *entity.Surah) {
	c.set(ctx, surahKey(surah.Id), surah)
}

func (c *ReferenceCache) GetVerse(ctx context.Context, table string, ref reference.Reference) (*entity.Verse, bool) {
	var v entity.Verse
	if !c.get(ctx, verseKey(table, ref), &v) {
		return nil, false
	}
	return &v, true
}

func (c *ReferenceCache) SetVerse(ctx context.Context, table string, ref reference.Reference, verse *entity.Verse) {
	c.set(ctx, verseKey(table, ref), verse)
}
