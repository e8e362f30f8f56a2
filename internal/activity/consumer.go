package activity

import (
	"context"
	"encoding/json"
	"time"

	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Mirror receives a copy of every applied activity event.
type Mirror interface {
	Publish(ctx context.Context, event events.Event) error
}

type Consumer struct {
	subscriber message.Subscriber
	repo       contract.IActivityRecorder
	mirror     Mirror
	logger     logger.ILogger
	done       chan struct{}
}

// NewConsumer creates a consumer. mirror may be nil.
func NewConsumer(subscriber message.Subscriber, repo contract.IActivityRecorder, mirror Mirror, log logger.ILogger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		repo:       repo,
		mirror:     mirror,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Consume subscribes and processes messages in the background until ctx
// is done or the subscriber closes. Done is closed afterwards.
func (c *Consumer) Consume(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, Topic)
	if err != nil {
		close(c.done)
		return err
	}

	go func() {
		defer close(c.done)
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) processMessage(ctx context.Context, msg *message.Message) {
	// Storage failures are logged and acked; counters are best effort.
	defer msg.Ack()

	var p payload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		c.logger.Error(logger.ModuleActivity, "Failed to unmarshal activity", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	var (
		err  error
		data map[string]interface{}
		at   time.Time
	)
	switch {
	case p.Kind == EventUserActivity && p.User != nil:
		err = c.repo.RecordUserActivity(ctx, *p.User)
		at = p.User.At
		data = map[string]interface{}{
			"nick":      p.User.Nick,
			"commands":  p.User.Commands,
			"successes": p.User.Successes,
			"failures":  p.User.Failures,
		}
	case p.Kind == EventChannelActivity && p.Channel != nil:
		err = c.repo.RecordChannelActivity(ctx, *p.Channel)
		at = p.Channel.At
		data = map[string]interface{}{
			"channel":  p.Channel.Channel,
			"messages": p.Channel.Messages,
			"joins":    p.Channel.Joins,
			"parts":    p.Channel.Parts,
		}
	default:
		c.logger.Warn(logger.ModuleActivity, "Ignoring unknown activity", map[string]interface{}{
			"kind": p.Kind,
		})
		return
	}

	if err != nil {
		c.logger.Error(logger.ModuleActivity, "Failed to apply activity", map[string]interface{}{
			"kind":  p.Kind,
			"error": err.Error(),
		})
		return
	}

	if c.mirror != nil {
		event := events.BaseEvent{Type: p.Kind, Data: data, OccurredAt: at.UTC()}
		if err := c.mirror.Publish(ctx, event); err != nil {
			c.logger.Warn(logger.ModuleActivity, "Failed to mirror activity", map[string]interface{}{
				"kind":  p.Kind,
				"error": err.Error(),
			})
		}
	}
}
