// FILE: internal/service/command_handlers.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
)

// handleStop cancels the issuer's own query. The acknowledgement is sent
// by the cancelled task once it unwinds.
func (s *orchestratorService) handleStop(ctx context.Context, req request) {
	if !s.CancelQuery(req.sender) {
		s.reply(ctx, req.replyTo, constant.MsgNothingToStop)
	}
}

func (s *orchestratorService) handleHelp(ctx context.Context, req request) {
	lines := constant.HelpChannel
	if req.private {
		lines = constant.HelpPrivate
	}
	for _, line := range lines {
		if err := s.deliver(ctx, nil, req.replyTo, line); err != nil {
			return
		}
	}
}

func (s *orchestratorService) handleQuit(ctx context.Context, req request) {
	s.reply(ctx, req.replyTo, constant.MsgShuttingDown)
	s.stopAll()
}

func (s *orchestratorService) handleJoin(ctx context.Context, req request) {
	channel, _, _ := strings.Cut(req.args, " ")
	if channel == "" {
		s.reply(ctx, req.replyTo, constant.MsgJoinEmpty)
		return
	}

	if err := s.transport.Join(ctx, channel); err != nil {
		s.reply(ctx, req.replyTo, fmt.Sprintf(constant.MsgJoinFailure, channel, err))
		return
	}
	s.logger.Info(logger.ModuleOrchestrator, "Joined channel", map[string]interface{}{
		"channel": channel,
	})
	s.recordChannel(ctx, entity.ChannelActivity{Channel: channel, Joins: 1, At: time.Now()})
}

func (s *orchestratorService) handlePart(ctx context.Context, req request) {
	channel, _, _ := strings.Cut(req.args, " ")
	if channel == "" {
		s.reply(ctx, req.replyTo, constant.MsgPartEmpty)
		return
	}

	if err := s.transport.Part(ctx, channel); err != nil {
		s.reply(ctx, req.replyTo, fmt.Sprintf(constant.MsgPartFailure, channel, err))
		return
	}
	s.logger.Info(logger.ModuleOrchestrator, "Left channel", map[string]interface{}{
		"channel": channel,
	})
	s.recordChannel(ctx, entity.ChannelActivity{Channel: channel, Parts: 1, At: time.Now()})
}

func (s *orchestratorService) handleCounts(ctx context.Context, req request) {
	summary, err := s.storage.UsageSummary(ctx)
	if err != nil {
		s.reply(ctx, req.replyTo, fmt.Sprintf(constant.MsgCountsFailure, err))
		return
	}
	if err := s.deliver(ctx, nil, req.replyTo, formatCounts(summary)); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to send counts", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// handleMsg relays "!msg <target> <text>".
func (s *orchestratorService) handleMsg(ctx context.Context, req request) {
	target, text, _ := strings.Cut(req.args, " ")
	text = strings.TrimSpace(text)
	if target == "" || text == "" {
		s.reply(ctx, req.replyTo, constant.MsgMsgEmpty)
		return
	}
	if err := s.deliver(ctx, nil, target, text); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to relay message", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
	}
}
