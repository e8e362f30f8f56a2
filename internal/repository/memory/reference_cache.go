package memory

import (
	"context"
	"fmt"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/pkg/ai/reference"

	"github.com/patrickmn/go-cache"
)

type ReferenceCache struct {
	cache *cache.Cache
}

var _ contract.IReferenceCache = (*ReferenceCache)(nil)

func NewReferenceCache(ttl time.Duration) *ReferenceCache {
	// Reference text never changes while the bot runs; the TTL only bounds memory.
	c := cache.New(ttl, 10*time.Minute)
	return &ReferenceCache{
		cache: c,
	}
}

func surahKey(id int) string {
	return fmt.Sprintf("surah:%d", id)
}

func verseKey(table string, ref reference.Reference) string {
	return fmt.Sprintf("verse:%s:%d:%d", table, ref.Collection, ref.Item)
}

func (r *ReferenceCache) GetSurah(_ context.Context, id int) (*entity.Surah, bool) {
	if x, found := r.cache.Get(surahKey(id)); found {
		s := *x.(*entity.Surah)
		return &s, true
	}
	return nil, false
}

func (r *ReferenceCache) SetSurah(_ context.Context, surah *entity.Surah) {
	s := *surah
	r.cache.Set(surahKey(surah.Id), &s, cache.DefaultExpiration)
}

func (r *ReferenceCache) GetVerse(_ context.Context, table string, ref reference.Reference) (*entity.Verse, bool) {
	if x, found := r.cache.Get(verseKey(table, ref)); found {
		v := *x.(*entity.Verse)
		return &v, true
	}
	return nil, false
}

func (r *ReferenceCache) SetVerse(_ context.Context, table string, ref reference.Reference, verse *entity.Verse) {
	v := *verse
	r.cache.Set(verseKey(table, ref), &v, cache.DefaultExpiration)
}

func (r *ReferenceCache) ItemCount() int {
	return r.cache.ItemCount()
}
