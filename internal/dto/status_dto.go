// FILE: internal/dto/status_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type HealthResponse struct {
	State string `json:"state"`
	Nick  string `json:"nick"`
}

type ActiveQueryResponse struct {
	Nick       string    `json:"nick"`
	Target     string    `json:"target"`
	ChunksSent int64     `json:"chunks_sent"`
	StartedAt  time.Time `json:"started_at"`
}

type UsageCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type UsageResponse struct {
	Total    int64                `json:"total"`
	Users    []UsageCountResponse `json:"users"`
	Channels []UsageCountResponse `json:"channels"`
}

type HistoryRequest struct {
	Nick    string `query:"nick"`
	Channel string `query:"channel"`
	Success string `query:"success" validate:"omitempty,oneof=true false"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int    `query:"offset" validate:"omitempty,min=0"`
}

type QueryHistoryResponse struct {
	Id         uuid.UUID `json:"id"`
	Nick       string    `json:"nick"`
	Channel    string    `json:"channel"`
	Query      string    `json:"query"`
	Success    bool      `json:"success"`
	ChunksSent int       `json:"chunks_sent"`
	CreatedAt  time.Time `json:"created_at"`
}
