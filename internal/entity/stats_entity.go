// FILE: internal/entity/stats_entity.go
// Domain entities for usage counters and query history
package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserActivity is a delta applied to one identity's counters.
type UserActivity struct {
	Nick      string
	Commands  int
	Successes int
	Failures  int
	At        time.Time
}

// ChannelActivity is a delta applied to one channel's counters.
type ChannelActivity struct {
	Channel  string
	Messages int
	Joins    int
	Parts    int
	At       time.Time
}

type QueryRecord struct {
	Id         uuid.UUID
	Nick       string
	Channel    string
	Query      string
	Success    bool
	ChunksSent int
	CreatedAt  time.Time
}

type UsageCount struct {
	Name  string
	Count int64
}

// UsageSummary aggregates the query history.
type UsageSummary struct {
	Total    int64
	Users    []UsageCount
	Channels []UsageCount
}
