// FILE: internal/service/orchestrator_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/ai/query"
	"quran-irc-bot/pkg/ai/reference"
	"quran-irc-bot/pkg/irc"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// ErrQueryCancelled is returned by a query task that observed a stop request.
var ErrQueryCancelled = errors.New("query cancelled")

const (
	DefaultChunkSize     = 350
	DefaultMaxConcurrent = 5
)

// Transport is the outbound half of the chat connection.
type Transport interface {
	Send(ctx context.Context, target, text string) error
	Join(ctx context.Context, channel string) error
	Part(ctx context.Context, channel string) error
	Quit(reason string) error
	CurrentNick() string
}

// Storage is everything the orchestrator reads from or writes to storage.
type Storage interface {
	Resolve(ctx context.Context, refs []reference.Reference, language string, rtl bool) ([]entity.DisplayLine, error)
	RecordUserActivity(ctx context.Context, activity entity.UserActivity) error
	RecordChannelActivity(ctx context.Context, activity entity.ChannelActivity) error
	LogQuery(ctx context.Context, record *entity.QueryRecord) error
	UsageSummary(ctx context.Context) (*entity.UsageSummary, error)
}

// QueryClient asks the AI endpoint for references.
type QueryClient interface {
	Query(ctx context.Context, text string) *query.Result
}

type OrchestratorConfig struct {
	Owner         string
	ChunkSize     int
	MaxConcurrent int64
	// OnShutdown runs after the owner asked the bot to quit.
	OnShutdown func()
}

// ActiveQuery is a read-only view of one running query.
type ActiveQuery struct {
	Nick       string    `json:"nick"`
	Target     string    `json:"target"`
	ChunksSent int64     `json:"chunks_sent"`
	StartedAt  time.Time `json:"started_at"`
}

type IOrchestratorService interface {
	HandleMessage(ctx context.Context, msg irc.PrivateMessage)
	CancelQuery(nick string) bool
	CancelAll() int
	ActiveQueries() []ActiveQuery
	Wait()
}

type activeQuery struct {
	nick            string
	target          string
	startedAt       time.Time
	cancel          context.CancelFunc
	cancelRequested atomic.Bool
	chunksSent      atomic.Int64

	// settled is guarded by orchestratorService.mu. A settled query has
	// passed its last checkpoint and can no longer be stopped.
	settled bool
}

func (q *activeQuery) stop() {
	q.cancelRequested.Store(true)
	q.cancel()
}

func (q *activeQuery) cancelled() bool {
	return q.cancelRequested.Load()
}

type request struct {
	sender  string
	replyTo string
	args    string
	private bool
}

type commandHandler func(ctx context.Context, req request)

type command struct {
	ownerOnly bool
	handle    commandHandler
}

type orchestratorService struct {
	transport Transport
	storage   Storage
	queries   QueryClient
	logger    logger.ILogger
	cfg       OrchestratorConfig
	gate      *semaphore.Weighted
	tracer    trace.Tracer
	commands  map[string]command

	mu             sync.Mutex
	active         map[string]*activeQuery
	helpSent       map[string]struct{}
	privateSuccess map[string]struct{}

	wg sync.WaitGroup
}

func NewOrchestratorService(
	transport Transport,
	storage Storage,
	queries QueryClient,
	log logger.ILogger,
	cfg OrchestratorConfig,
) IOrchestratorService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}

	s := &orchestratorService{
		transport:      transport,
		storage:        storage,
		queries:        queries,
		logger:         log,
		cfg:            cfg,
		gate:           semaphore.NewWeighted(cfg.MaxConcurrent),
		tracer:         otel.Tracer("quran-irc-bot/orchestrator"),
		active:         make(map[string]*activeQuery),
		helpSent:       make(map[string]struct{}),
		privateSuccess: make(map[string]struct{}),
	}

	s.commands = map[string]command{
		constant.CommandQuran:  {handle: s.handleQuery},
		constant.CommandStop:   {handle: s.handleStop},
		constant.CommandHelp:   {handle: s.handleHelp},
		constant.CommandQuit:   {ownerOnly: true, handle: s.handleQuit},
		constant.CommandJoin:   {ownerOnly: true, handle: s.handleJoin},
		constant.CommandPart:   {ownerOnly: true, handle: s.handlePart},
		constant.CommandCounts: {ownerOnly: true, handle: s.handleCounts},
		constant.CommandMsg:    {ownerOnly: true, handle: s.handleMsg},
	}
	return s
}

// HandleMessage dispatches one inbound message. Queries run in their own
// goroutine; everything else completes before HandleMessage returns.
func (s *orchestratorService) HandleMessage(ctx context.Context, msg irc.PrivateMessage) {
	req := request{sender: msg.Sender, replyTo: msg.Target}
	if !irc.IsChannel(msg.Target) {
		req.private = true
		req.replyTo = msg.Sender
	}

	now := time.Now()
	s.recordUser(ctx, entity.UserActivity{Nick: msg.Sender, Commands: 1, At: now})
	s.recordChannel(ctx, entity.ChannelActivity{Channel: msg.Target, Messages: 1, At: now})

	text := strings.TrimSpace(msg.Text)
	token, args, _ := strings.Cut(text, " ")
	if !strings.HasPrefix(token, constant.CommandPrefix) {
		s.greet(ctx, req, text)
		return
	}

	cmd, ok := s.commands[token]
	if !ok {
		return
	}
	if cmd.ownerOnly && !s.isOwner(req) {
		s.logger.Warn(logger.ModuleOrchestrator, "Owner command refused", map[string]interface{}{
			"command": token,
			"sender":  req.sender,
		})
		return
	}

	req.args = strings.TrimSpace(args)
	cmd.handle(ctx, req)
}

// greet sends the private help once per identity, on a first private
// message or when the bot is mentioned in a channel.
func (s *orchestratorService) greet(ctx context.Context, req request, text string) {
	nick := s.transport.CurrentNick()
	mentioned := nick != "" && strings.Contains(strings.ToLower(text), strings.ToLower(nick))
	if !req.private && !mentioned {
		return
	}

	key := strings.ToLower(req.sender)
	s.mu.Lock()
	_, sent := s.helpSent[key]
	if !sent {
		s.helpSent[key] = struct{}{}
	}
	s.mu.Unlock()
	if sent {
		return
	}

	for _, line := range constant.HelpPrivate {
		if err := s.deliver(ctx, nil, req.sender, line); err != nil {
			return
		}
	}
}

func (s *orchestratorService) isOwner(req request) bool {
	return s.cfg.Owner != "" &&
		strings.EqualFold(req.sender, s.cfg.Owner) &&
		strings.EqualFold(req.replyTo, s.cfg.Owner)
}

func (s *orchestratorService) CancelQuery(nick string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.active[strings.ToLower(nick)]
	if !ok || q.settled {
		return false
	}
	q.stop()
	return true
}

func (s *orchestratorService) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, q := range s.active {
		if !q.settled {
			n++
		}
		q.stop()
	}
	return n
}

func (s *orchestratorService) ActiveQueries() []ActiveQuery {
	s.mu.Lock()
	out := make([]ActiveQuery, 0, len(s.active))
	for _, q := range s.active {
		out = append(out, ActiveQuery{
			Nick:       q.nick,
			Target:     q.target,
			ChunksSent: q.chunksSent.Load(),
			StartedAt:  q.startedAt,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Nick < out[j].Nick })
	return out
}

// Wait blocks until every query task has settled.
func (s *orchestratorService) Wait() {
	s.wg.Wait()
}

// reply sends a notice without cancellation checks or chunk accounting.
func (s *orchestratorService) reply(ctx context.Context, target, text string) {
	if err := s.transport.Send(ctx, target, text); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to send notice", map[string]interface{}{
			"target": target,
			"error":  err.Error(),
		})
	}
}

func (s *orchestratorService) recordUser(ctx context.Context, a entity.UserActivity) {
	if err := s.storage.RecordUserActivity(ctx, a); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to record user activity", map[string]interface{}{
			"nick":  a.Nick,
			"error": err.Error(),
		})
	}
}

func (s *orchestratorService) recordChannel(ctx context.Context, a entity.ChannelActivity) {
	if err := s.storage.RecordChannelActivity(ctx, a); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Failed to record channel activity", map[string]interface{}{
			"channel": a.Channel,
			"error":   err.Error(),
		})
	}
}

func (s *orchestratorService) stopAll() {
	n := s.CancelAll()
	s.logger.Info(logger.ModuleOrchestrator, "Shutting down", map[string]interface{}{
		"cancelled_queries": n,
	})
	if err := s.transport.Quit(constant.MsgQuitReason); err != nil {
		s.logger.Warn(logger.ModuleOrchestrator, "Quit failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if s.cfg.OnShutdown != nil {
		s.cfg.OnShutdown()
	}
}

// formatCounts renders "Usage counts: total=N; users: a=2, b=1; channels: #x=2".
func formatCounts(summary *entity.UsageSummary) string {
	join := func(counts []entity.UsageCount) string {
		if len(counts) == 0 {
			return "none"
		}
		parts := make([]string, len(counts))
		for i, c := range counts {
			parts[i] = fmt.Sprintf("%s=%d", c.Name, c.Count)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("Usage counts: total=%d; users: %s; channels: %s",
		summary.Total, join(summary.Users), join(summary.Channels))
}
