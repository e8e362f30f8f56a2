// FILE: internal/service/query_pipeline.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/ai/query"
	"quran-irc-bot/pkg/ai/reference"
	"quran-irc-bot/pkg/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// handleQuery registers the issuer's single query slot and runs the
// pipeline in the background.
func (s *orchestratorService) handleQuery(ctx context.Context, req request) {
	q, taskCtx, ok := s.register(ctx, req)
	if !ok {
		s.reply(ctx, req.replyTo, constant.MsgQueryExists)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.executeQuery(taskCtx, q, req); err != nil {
			s.logger.Info(logger.ModuleOrchestrator, "Query ended early", map[string]interface{}{
				"nick":  req.sender,
				"error": err.Error(),
			})
		}
	}()
}

// register claims the slot for req.sender. The task context outlives the
// inbound message and is cancelled only by a stop request or cleanup.
func (s *orchestratorService) register(ctx context.Context, req request) (*activeQuery, context.Context, bool) {
	key := strings.ToLower(req.sender)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[key]; exists {
		return nil, nil, false
	}

	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &activeQuery{
		nick:      req.sender,
		target:    req.replyTo,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	s.active[key] = q
	return q, taskCtx, true
}

// executeQuery runs the pipeline, reports its outcome and always cleans up.
// Only cancellation is returned to the caller.
func (s *orchestratorService) executeQuery(ctx context.Context, q *activeQuery, req request) error {
	ctx, span := s.tracer.Start(ctx, "orchestrator.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("query.nick", req.sender),
		attribute.String("query.target", req.replyTo),
	)

	// Notices and bookkeeping after cancellation must still go out.
	bg := context.WithoutCancel(ctx)

	success, err := s.pipeline(ctx, q, req)
	switch {
	case errors.Is(err, ErrQueryCancelled):
		s.reply(bg, req.replyTo, constant.MsgStopped)
		span.SetStatus(codes.Error, "cancelled")
	case err != nil:
		s.logger.Error(logger.ModuleOrchestrator, "Query failed", map[string]interface{}{
			"nick":  req.sender,
			"query": req.args,
			"error": err.Error(),
		})
		s.reply(bg, req.replyTo, constant.MsgNoResults)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = nil
	}

	activity := entity.UserActivity{Nick: req.sender, At: time.Now()}
	if success {
		activity.Successes = 1
	} else {
		activity.Failures = 1
	}
	s.recordUser(bg, activity)

	s.finish(bg, q, req, success)
	span.SetAttributes(attribute.Int64("query.chunks_sent", q.chunksSent.Load()))
	return err
}

// finish appends the history record and releases the slot.
func (s *orchestratorService) finish(ctx context.Context, q *activeQuery, req request, success bool) {
	s.mu.Lock()
	q.settled = true
	s.mu.Unlock()

	record := &entity.QueryRecord{
		Nick:       req.sender,
		Channel:    req.replyTo,
		Query:      req.args,
		Success:    success,
		ChunksSent: int(q.chunksSent.Load()),
	}
	if err := s.storage.LogQuery(ctx, record); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to log query", map[string]interface{}{
			"nick":  req.sender,
			"error": err.Error(),
		})
	}

	key := strings.ToLower(req.sender)
	s.mu.Lock()
	if s.active[key] == q {
		delete(s.active, key)
	}
	s.mu.Unlock()
	q.cancel()

	s.logger.Info(logger.ModuleOrchestrator, "Query settled", map[string]interface{}{
		"nick":        req.sender,
		"success":     success,
		"chunks_sent": record.ChunksSent,
	})
}

// pipeline reports whether the query ran to a notice, or ErrQueryCancelled
// when a checkpoint saw a stop request. Empty, unanswered and unresolvable
// queries end with their own notice and still count as completed.
func (s *orchestratorService) pipeline(ctx context.Context, q *activeQuery, req request) (bool, error) {
	if req.args == "" {
		return s.conclude(ctx, q, req, constant.MsgWrongCommand)
	}

	if !req.private {
		s.reply(ctx, req.replyTo, constant.MsgQueued)
	}

	result, err := s.ask(ctx, req.args)
	if err != nil {
		return false, ErrQueryCancelled
	}

	if q.cancelled() {
		return false, ErrQueryCancelled
	}

	if result.Status == query.StatusTimedOut {
		return s.conclude(ctx, q, req, constant.MsgTimeout)
	}
	if result.Status != query.StatusOK || result.Response == nil || len(result.Response.References) == 0 {
		return s.conclude(ctx, q, req, constant.MsgNoResults)
	}

	refs := reference.Canonicalize(result.Response.References)
	lines, err := s.storage.Resolve(ctx, refs, result.Response.Language, result.Response.RTL)
	if err != nil {
		return false, fmt.Errorf("resolve references: %w", err)
	}
	if len(lines) == 0 {
		return s.conclude(ctx, q, req, constant.MsgNoResults)
	}

	for _, group := range groupLines(lines) {
		if q.cancelled() {
			return false, ErrQueryCancelled
		}
		if err := s.send(ctx, req.replyTo, group.header); err != nil {
			return false, err
		}
		for _, line := range group.members {
			if err := s.deliver(ctx, q, req.replyTo, line); err != nil {
				return false, err
			}
		}
	}

	if ok, err := s.conclude(ctx, q, req, constant.MsgCompletion); !ok {
		return ok, err
	}
	if req.private && s.firstPrivateSuccess(req.sender) {
		s.reply(ctx, req.replyTo, constant.MsgChannelInvite)
	}
	return true, nil
}

// conclude settles q and sends its closing notice. A stop request that
// arrived first wins and the query unwinds as cancelled.
func (s *orchestratorService) conclude(ctx context.Context, q *activeQuery, req request, notice string) (bool, error) {
	s.mu.Lock()
	if q.cancelled() {
		s.mu.Unlock()
		return false, ErrQueryCancelled
	}
	q.settled = true
	s.mu.Unlock()

	s.reply(ctx, req.replyTo, notice)
	return true, nil
}

// ask holds the global gate for the duration of the AI call only. The
// error is non-nil only when ctx ended while waiting for the gate.
func (s *orchestratorService) ask(ctx context.Context, text string) (*query.Result, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.gate.Release(1)
	return s.queries.Query(ctx, text), nil
}

func (s *orchestratorService) firstPrivateSuccess(nick string) bool {
	key := strings.ToLower(nick)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.privateSuccess[key]; seen {
		return false
	}
	s.privateSuccess[key] = struct{}{}
	return true
}

type lineGroup struct {
	header  string
	members []string
}

// groupLines starts a group at every header line. Content before the first
// header is kept under an empty header.
func groupLines(lines []entity.DisplayLine) []lineGroup {
	var groups []lineGroup
	for _, line := range lines {
		if line.Kind == entity.LineHeader || len(groups) == 0 {
			groups = append(groups, lineGroup{})
			if line.Kind == entity.LineHeader {
				groups[len(groups)-1].header = line.Text
				continue
			}
		}
		g := &groups[len(groups)-1]
		g.members = append(g.members, line.Text)
	}
	return groups
}

// send writes one line, mapping an ended task context to cancellation.
func (s *orchestratorService) send(ctx context.Context, target, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := s.transport.Send(ctx, target, text); err != nil {
		if ctx.Err() != nil {
			return ErrQueryCancelled
		}
		return fmt.Errorf("send to %s: %w", target, err)
	}
	return nil
}

// deliver splits text into windows and sends the non-blank ones, checking
// for a stop request before each. q may be nil for untracked output.
func (s *orchestratorService) deliver(ctx context.Context, q *activeQuery, target, text string) error {
	for _, window := range utils.SplitWindows(text, s.cfg.ChunkSize) {
		if strings.TrimSpace(window) == "" {
			continue
		}
		if q != nil && q.cancelled() {
			return ErrQueryCancelled
		}
		if err := s.send(ctx, target, window); err != nil {
			return err
		}
		if q != nil {
			q.chunksSent.Add(1)
		}
		s.recordChannel(ctx, entity.ChannelActivity{Channel: target, Messages: 1, At: time.Now()})
	}
	return nil
}
