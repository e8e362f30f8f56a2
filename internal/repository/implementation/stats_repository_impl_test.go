package implementation

import (
	"context"
	"testing"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/model"
	"quran-irc-bot/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUserActivityAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	later := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordUserActivity(ctx, entity.UserActivity{Nick: "alice", Commands: 1}))
	require.NoError(t, repo.RecordUserActivity(ctx, entity.UserActivity{Nick: "alice", Commands: 1, Successes: 1}))
	require.NoError(t, repo.RecordUserActivity(ctx, entity.UserActivity{Nick: "alice", Failures: 1, At: later}))

	var stat model.UserStat
	require.NoError(t, db.First(&stat, "nick = ?", "alice").Error)
	assert.Equal(t, int64(2), stat.TotalCommands)
	assert.Equal(t, int64(1), stat.SuccessfulQueries)
	assert.Equal(t, int64(1), stat.FailedQueries)
	assert.True(t, stat.LastSeen.Equal(later))
}

func TestRecordChannelActivityAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#quran", Messages: 1}))
	require.NoError(t, repo.RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#quran", Messages: 1}))
	require.NoError(t, repo.RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#quran", Joins: 1}))
	require.NoError(t, repo.RecordChannelActivity(ctx, entity.ChannelActivity{Channel: "#quran", Parts: 1}))

	var stat model.ChannelStat
	require.NoError(t, db.First(&stat, "channel = ?", "#quran").Error)
	assert.Equal(t, int64(2), stat.MessageCount)
	assert.Equal(t, int64(1), stat.JoinCount)
	assert.Equal(t, int64(1), stat.PartCount)
}

func TestLogQueryAndUsageSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()

	records := []*entity.QueryRecord{
		{Nick: "alice", Channel: "#quran", Query: "mercy", Success: true, ChunksSent: 4},
		{Nick: "alice", Channel: "#margalla", Query: "patience", Success: false},
		{Nick: "bob", Channel: "#quran", Query: "", Success: false},
	}
	for _, rec := range records {
		require.NoError(t, repo.LogQuery(ctx, rec))
		assert.NotEqual(t, uuid.Nil, rec.Id)
		assert.False(t, rec.CreatedAt.IsZero())
	}

	summary, err := repo.UsageSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, []entity.UsageCount{{Name: "alice", Count: 2}, {Name: "bob", Count: 1}}, summary.Users)
	assert.Equal(t, []entity.UsageCount{{Name: "#margalla", Count: 1}, {Name: "#quran", Count: 2}}, summary.Channels)
}

func TestFindQueriesWithSpecifications(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, nick := range []string{"Alice", "alice", "bob"} {
		require.NoError(t, repo.LogQuery(ctx, &entity.QueryRecord{
			Nick:       nick,
			Channel:    "#quran",
			Query:      "q",
			Success:    i == 0,
			ChunksSent: i,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	byNick, err := repo.FindQueries(ctx, specification.ByNick{Nick: "ALICE"})
	require.NoError(t, err)
	require.Len(t, byNick, 2)
	assert.Equal(t, 1, byNick[0].ChunksSent, "newest first")

	failed, err := repo.FindQueries(ctx, specification.BySuccess{Success: false}, specification.Pagination{Limit: 1})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "bob", failed[0].Nick)

	recent, err := repo.FindQueries(ctx, specification.CreatedSince{Since: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "bob", recent[0].Nick)
}
