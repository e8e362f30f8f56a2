package contract

import (
	"context"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/repository/specification"
)

// IActivityRecorder applies counter deltas.
type IActivityRecorder interface {
	RecordUserActivity(ctx context.Context, activity entity.UserActivity) error
	RecordChannelActivity(ctx context.Context, activity entity.ChannelActivity) error
}

// IStatsRepository owns usage counters and the query history.
type IStatsRepository interface {
	IActivityRecorder
	LogQuery(ctx context.Context, record *entity.QueryRecord) error
	UsageSummary(ctx context.Context) (*entity.UsageSummary, error)
	FindQueries(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error)
}
