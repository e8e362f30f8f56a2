// FILE: internal/mapper/stats_mapper.go
// Mapper for QueryRecord entity <-> model conversion
package mapper

import (
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/model"
)

type StatsMapper struct{}

func NewStatsMapper() *StatsMapper {
	return &StatsMapper{}
}

func (m *StatsMapper) QueryToEntity(q *model.QueryHistory) *entity.QueryRecord {
	if q == nil {
		return nil
	}
	return &entity.QueryRecord{
		Id:         q.Id,
		Nick:       q.Nick,
		Channel:    q.Channel,
		Query:      q.Query,
		Success:    q.Success,
		ChunksSent: q.ChunksSent,
		CreatedAt:  q.CreatedAt,
	}
}

func (m *StatsMapper) QueryToModel(q *entity.QueryRecord) *model.QueryHistory {
	if q == nil {
		return nil
	}
	return &model.QueryHistory{
		Id:         q.Id,
		Nick:       q.Nick,
		Channel:    q.Channel,
		Query:      q.Query,
		Success:    q.Success,
		ChunksSent: q.ChunksSent,
		CreatedAt:  q.CreatedAt,
	}
}

func (m *StatsMapper) QueriesToEntities(models []model.QueryHistory) []*entity.QueryRecord {
	out := make([]*entity.QueryRecord, len(models))
	for i := range models {
		out[i] = m.QueryToEntity(&models[i])
	}
	return out
}
