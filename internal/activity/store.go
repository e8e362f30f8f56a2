package activity

import (
	"context"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/pkg/ai/reference"
)

// Store is the storage collaborator seen by the orchestrator. Reference
// lookups and the query history go straight to the repositories; counter
// updates go through the asynchronous recorder.
type Store struct {
	references contract.IReferenceRepository
	recorder   contract.IActivityRecorder
	stats      contract.IStatsRepository
}

func NewStore(references contract.IReferenceRepository, recorder contract.IActivityRecorder, stats contract.IStatsRepository) *Store {
	return &Store{references: references, recorder: recorder, stats: stats}
}

func (s *Store) Resolve(ctx context.Context, refs []reference.Reference, language string, rtl bool) ([]entity.DisplayLine, error) {
	return s.references.Resolve(ctx, refs, language, rtl)
}

func (s *Store) RecordUserActivity(ctx context.Context, a entity.UserActivity) error {
	return s.recorder.RecordUserActivity(ctx, a)
}

func (s *Store) RecordChannelActivity(ctx context.Context, a entity.ChannelActivity) error {
	return s.recorder.RecordChannelActivity(ctx, a)
}

func (s *Store) LogQuery(ctx context.Context, record *entity.QueryRecord) error {
	return s.stats.LogQuery(ctx, record)
}

func (s *Store) UsageSummary(ctx context.Context) (*entity.UsageSummary, error) {
	return s.stats.UsageSummary(ctx)
}
