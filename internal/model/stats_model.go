package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStat struct {
	Nick              string `gorm:"primaryKey"`
	TotalCommands     int64  `gorm:"not null;default:0"`
	SuccessfulQueries int64  `gorm:"not null;default:0"`
	FailedQueries     int64  `gorm:"not null;default:0"`
	LastSeen          time.Time
}

func (UserStat) TableName() string {
	return "user_stats"
}

type ChannelStat struct {
	Channel      string `gorm:"primaryKey"`
	JoinCount    int64  `gorm:"not null;default:0"`
	PartCount    int64  `gorm:"not null;default:0"`
	MessageCount int64  `gorm:"not null;default:0"`
	LastActivity time.Time
}

func (ChannelStat) TableName() string {
	return "channel_stats"
}

type QueryHistory struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nick       string    `gorm:"not null;index"`
	Channel    string    `gorm:"not null;index"`
	Query      string    `gorm:"type:text"`
	Success    bool      `gorm:"not null"`
	ChunksSent int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (QueryHistory) TableName() string {
	return "query_history"
}

// StatsModels are the tables the bot owns and migrates.
func StatsModels() []interface{} {
	return []interface{}{
		&UserStat{},
		&ChannelStat{},
		&QueryHistory{},
	}
}
