package memory

import (
	"context"
	"testing"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/pkg/ai/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceCacheRoundTrip(t *testing.T) {
	c := NewReferenceCache(time.Hour)
	ctx := context.Background()
	ref := reference.Reference{Collection: 2, Item: 255}

	_, ok := c.GetSurah(ctx, 2)
	assert.False(t, ok)

	c.SetSurah(ctx, &entity.Surah{Id: 2, NameEn: "Al-Baqara"})
	c.SetVerse(ctx, "english", ref, &entity.Verse{SurahId: 2, NumberInSurah: 255, Text: "kursi"})

	s, ok := c.GetSurah(ctx, 2)
	require.True(t, ok)
	assert.Equal(t, "Al-Baqara", s.NameEn)

	v, ok := c.GetVerse(ctx, "english", ref)
	require.True(t, ok)
	assert.Equal(t, "kursi", v.Text)

	_, ok = c.GetVerse(ctx, "urdu", ref)
	assert.False(t, ok, "tables are cached separately")
	assert.Equal(t, 2, c.ItemCount())
}

func TestReferenceCacheReturnsCopies(t *testing.T) {
	c := NewReferenceCache(time.Hour)
	ctx := context.Background()

	original := &entity.Surah{Id: 1, NameEn: "Al-Faatiha"}
	c.SetSurah(ctx, original)
	original.NameEn = "changed"

	got, ok := c.GetSurah(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Al-Faatiha", got.NameEn)

	got.NameEn = "mutated"
	again, _ := c.GetSurah(ctx, 1)
	assert.Equal(t, "Al-Faatiha", again.NameEn)
}
