// Package activity moves usage-counter writes off the message path. The
// Recorder publishes deltas onto a watermill topic and the Consumer applies
// them to storage, mirroring each to NATS when configured.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const Topic = "bot.activity"

const (
	EventUserActivity    = "USER_ACTIVITY"
	EventChannelActivity = "CHANNEL_ACTIVITY"
)

type payload struct {
	Kind    string                  `json:"kind"`
	User    *entity.UserActivity    `json:"user,omitempty"`
	Channel *entity.ChannelActivity `json:"channel,omitempty"`
}

type Recorder struct {
	publisher message.Publisher
	logger    logger.ILogger
}

var _ contract.IActivityRecorder = (*Recorder)(nil)

func NewRecorder(publisher message.Publisher, log logger.ILogger) *Recorder {
	return &Recorder{publisher: publisher, logger: log}
}

func (r *Recorder) RecordUserActivity(ctx context.Context, a entity.UserActivity) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	return r.publish(ctx, payload{Kind: EventUserActivity, User: &a})
}

func (r *Recorder) RecordChannelActivity(ctx context.Context, a entity.ChannelActivity) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	return r.publish(ctx, payload{Kind: EventChannelActivity, Channel: &a})
}

func (r *Recorder) publish(ctx context.Context, p payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), data)
	msg.SetContext(ctx)
	if err := r.publisher.Publish(Topic, msg); err != nil {
		r.logger.Warn(logger.ModuleActivity, "Failed to publish activity", map[string]interface{}{
			"kind":  p.Kind,
			"error": err.Error(),
		})
		return fmt.Errorf("publish activity: %w", err)
	}
	return nil
}
