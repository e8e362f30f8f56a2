// FILE: internal/controller/status_controller.go
package controller

import (
	"quran-irc-bot/internal/dto"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/pkg/serverutils"
	"quran-irc-bot/internal/repository/contract"
	"quran-irc-bot/internal/repository/specification"
	"quran-irc-bot/internal/service"
	"quran-irc-bot/pkg/irc"

	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 20

// ConnectionStatus is the read side of the transport client.
type ConnectionStatus interface {
	State() irc.State
	CurrentNick() string
}

// ActiveQueryLister lists running queries.
type ActiveQueryLister interface {
	ActiveQueries() []service.ActiveQuery
}

type IStatusController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	ActiveQueries(ctx *fiber.Ctx) error
	Usage(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type statusController struct {
	connection ConnectionStatus
	queries    ActiveQueryLister
	stats      contract.IStatsRepository
	logger     logger.ILogger
}

func NewStatusController(
	connection ConnectionStatus,
	queries ActiveQueryLister,
	stats contract.IStatsRepository,
	log logger.ILogger,
) IStatusController {
	return &statusController{
		connection: connection,
		queries:    queries,
		stats:      stats,
		logger:     log,
	}
}

func (c *statusController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", c.Health)
	r.Get("/queries", c.ActiveQueries)
	r.Get("/usage", c.Usage)
	r.Get("/history", c.History)
}

// Health answers 503 until the bot is registered on the network.
func (c *statusController) Health(ctx *fiber.Ctx) error {
	state := c.connection.State()
	res := dto.HealthResponse{State: state.String(), Nick: c.connection.CurrentNick()}
	if state != irc.StateAuthenticated {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("Not connected", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Connected", res))
}

func (c *statusController) ActiveQueries(ctx *fiber.Ctx) error {
	active := c.queries.ActiveQueries()
	res := make([]dto.ActiveQueryResponse, len(active))
	for i, q := range active {
		res[i] = dto.ActiveQueryResponse{
			Nick:       q.Nick,
			Target:     q.Target,
			ChunksSent: q.ChunksSent,
			StartedAt:  q.StartedAt,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get active queries", res))
}

func (c *statusController) Usage(ctx *fiber.Ctx) error {
	summary, err := c.stats.UsageSummary(ctx.UserContext())
	if err != nil {
		c.logger.Error(logger.ModuleServer, "Failed to load usage summary", map[string]interface{}{
			"error": err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load usage summary")
	}

	res := dto.UsageResponse{
		Total:    summary.Total,
		Users:    toUsageCounts(summary.Users),
		Channels: toUsageCounts(summary.Channels),
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get usage", res))
}

func (c *statusController) History(ctx *fiber.Ctx) error {
	var req dto.HistoryRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	specs := []specification.Specification{}
	if req.Nick != "" {
		specs = append(specs, specification.ByNick{Nick: req.Nick})
	}
	if req.Channel != "" {
		specs = append(specs, specification.ByChannel{Channel: req.Channel})
	}
	if req.Success != "" {
		specs = append(specs, specification.BySuccess{Success: req.Success == "true"})
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: req.Offset})

	records, err := c.stats.FindQueries(ctx.UserContext(), specs...)
	if err != nil {
		c.logger.Error(logger.ModuleServer, "Failed to load query history", map[string]interface{}{
			"error": err.Error(),
		})
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load query history")
	}

	res := make([]dto.QueryHistoryResponse, len(records))
	for i, r := range records {
		res[i] = dto.QueryHistoryResponse{
			Id:         r.Id,
			Nick:       r.Nick,
			Channel:    r.Channel,
			Query:      r.Query,
			Success:    r.Success,
			ChunksSent: r.ChunksSent,
			CreatedAt:  r.CreatedAt,
		}
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get query history", res))
}

func toUsageCounts(counts []entity.UsageCount) []dto.UsageCountResponse {
	out := make([]dto.UsageCountResponse, len(counts))
	for i, c := range counts {
		out[i] = dto.UsageCountResponse{Name: c.Name, Count: c.Count}
	}
	return out
}
