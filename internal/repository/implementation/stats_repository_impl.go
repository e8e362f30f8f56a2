package implementation

import (
	"context"
	"fmt"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/mapper"
	"quran-irc-bot/internal/model"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/internal/repository/scope"
	"quran-irc-bot/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type statsRepository struct {
	db     *gorm.DB
	mapper *mapper.StatsMapper
}

// NewStatsRepository creates a new usage statistics repository
func NewStatsRepository(db *gorm.DB) contract.IStatsRepository {
	return &statsRepository{db: db, mapper: mapper.NewStatsMapper()}
}

// applySpecifications applies all specifications to the query
func (r *statsRepository) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *statsRepository) RecordUserActivity(ctx context.Context, a entity.UserActivity) error {
	at := orNow(a.At)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := model.UserStat{Nick: a.Nick, LastSeen: at}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed user stats: %w", err)
		}
		return tx.Model(&model.UserStat{}).Where("nick = ?", a.Nick).Updates(map[string]interface{}{
			"total_commands":     gorm.Expr("total_commands + ?", a.Commands),
			"successful_queries": gorm.Expr("successful_queries + ?", a.Successes),
			"failed_queries":     gorm.Expr("failed_queries + ?", a.Failures),
			"last_seen":          at,
		}).Error
	})
}

func (r *statsRepository) RecordChannelActivity(ctx context.Context, a entity.ChannelActivity) error {
	at := orNow(a.At)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := model.ChannelStat{Channel: a.Channel, LastActivity: at}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed channel stats: %w", err)
		}
		return tx.Model(&model.ChannelStat{}).Where("channel = ?", a.Channel).Updates(map[string]interface{}{
			"message_count": gorm.Expr("message_count + ?", a.Messages),
			"join_count":    gorm.Expr("join_count + ?", a.Joins),
			"part_count":    gorm.Expr("part_count + ?", a.Parts),
			"last_activity": at,
		}).Error
	})
}

func (r *statsRepository) LogQuery(ctx context.Context, record *entity.QueryRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	record.CreatedAt = orNow(record.CreatedAt)
	m := r.mapper.QueryToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

type usageRow struct {
	Name  string
	Count int64
}

func (r *statsRepository) UsageSummary(ctx context.Context) (*entity.UsageSummary, error) {
	db := r.db.WithContext(ctx)
	summary := &entity.UsageSummary{}

	if err := db.Model(&model.QueryHistory{}).Count(&summary.Total).Error; err != nil {
		return nil, fmt.Errorf("count queries: %w", err)
	}

	users, err := r.groupCounts(db, "nick")
	if err != nil {
		return nil, err
	}
	channels, err := r.groupCounts(db, "channel")
	if err != nil {
		return nil, err
	}
	summary.Users = users
	summary.Channels = channels
	return summary, nil
}

func (r *statsRepository) groupCounts(db *gorm.DB, column string) ([]entity.UsageCount, error) {
	var rows []usageRow
	err := db.Model(&model.QueryHistory{}).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count queries by %s: %w", column, err)
	}
	out := make([]entity.UsageCount, len(rows))
	for i, row := range rows {
		out[i] = entity.UsageCount{Name: row.Name, Count: row.Count}
	}
	return out, nil
}

func (r *statsRepository) FindQueries(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	var models []model.QueryHistory
	query := r.applySpecifications(r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.QueriesToEntities(models), nil
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
