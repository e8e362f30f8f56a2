package bootstrap

import (
	"context"
	"fmt"
	"time"

	"quran-irc-bot/internal/activity"
	"quran-irc-bot/internal/config"
	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/controller"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/internal/repository/implementation"
	"quran-irc-bot/internal/repository/memory"
	"quran-irc-bot/internal/repository/rediscache"
	"quran-irc-bot/internal/service"
	"quran-irc-bot/pkg/ai/query"
	"quran-irc-bot/pkg/clock"
	"quran-irc-bot/pkg/irc"
	"quran-irc-bot/pkg/llm/factory"

	pktNats "quran-irc-bot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Transport and core
	IRC          *irc.Client
	Orchestrator service.IOrchestratorService

	// Background Services (Exposed for main.go to run)
	ActivityConsumer *activity.Consumer

	// Controllers
	StatusController controller.IStatusController

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

// NewContainer wires the bot. shutdown runs when the owner asks the bot to
// quit. Optional infrastructure (redis, NATS) degrades to its in-process
// or disabled form when unreachable.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger, shutdown func()) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	c.pubSub = gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 2. Storage
	cache := c.newReferenceCache(ctx, cfg)
	referenceRepo := implementation.NewReferenceRepository(db, cache, sysLogger)
	statsRepo := implementation.NewStatsRepository(db)

	var mirror activity.Mirror
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(logger.ModuleBootstrap, "Failed to connect to NATS, event mirror disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.natsPub = natsPub
			mirror = natsPub
		}
	}

	recorder := activity.NewRecorder(c.pubSub, sysLogger)
	c.ActivityConsumer = activity.NewConsumer(c.pubSub, statsRepo, mirror, sysLogger)
	store := activity.NewStore(referenceRepo, recorder, statsRepo)

	// 3. AI
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.Provider, cfg.Ai.APIKey, cfg.Ai.APIURL, cfg.Ai.Model)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	sysLogger.Info(logger.ModuleBootstrap, "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.Provider,
		"model":    cfg.Ai.Model,
	})
	queryClient := query.NewClient(llmProvider, clock.Real{}, sysLogger, query.Config{
		MaxAttempts:    cfg.Ai.MaxAttempts,
		AttemptTimeout: cfg.Ai.AttemptTimeout,
		BackoffUnit:    time.Second,
		SystemPrompt:   constant.QuranSystemPrompt,
		Temperature:    cfg.Ai.Temperature,
	})

	// 4. Transport + Orchestrator
	c.IRC = irc.NewClient(irc.Options{
		Server:           cfg.IRC.Server,
		Port:             cfg.IRC.Port,
		TLS:              cfg.IRC.TLS,
		Nick:             cfg.IRC.Nick,
		AltNick:          cfg.IRC.AltNick,
		Password:         cfg.IRC.Password,
		Channels:         cfg.IRC.Channels,
		Owner:            cfg.IRC.Owner,
		FloodNotice:      constant.MsgFloodProtection,
		JoinNoticeFormat: constant.MsgJoinSuccess,
		PartNoticeFormat: constant.MsgPartSuccess,
	}, sysLogger, clock.Real{})

	c.Orchestrator = service.NewOrchestratorService(c.IRC, store, queryClient, sysLogger, service.OrchestratorConfig{
		Owner:         cfg.IRC.Owner,
		ChunkSize:     cfg.Bot.ChunkSize,
		MaxConcurrent: cfg.Ai.MaxConcurrent,
		OnShutdown:    shutdown,
	})
	c.IRC.SetHandler(c.Orchestrator.HandleMessage)

	// 5. Controllers
	c.StatusController = controller.NewStatusController(c.IRC, c.Orchestrator, statsRepo, sysLogger)

	return c, nil
}

func (c *Container) newReferenceCache(ctx context.Context, cfg *config.Config) contract.IReferenceCache {
	if cfg.App.RedisURL == "" {
		return memory.NewReferenceCache(cfg.App.CacheTTL)
	}

	rdb := rediscache.NewClient(cfg.App.RedisURL)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		c.Logger.Warn(logger.ModuleBootstrap, "Failed to connect to Redis, using in-process cache", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return memory.NewReferenceCache(cfg.App.CacheTTL)
	}
	c.rdb = rdb
	return rediscache.NewReferenceCache(rdb, cfg.App.CacheTTL, c.Logger)
}

// Close releases the event bus and external connections.
func (c *Container) Close() {
	if c.pubSub != nil {
		_ = c.pubSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}
