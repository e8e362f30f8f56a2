package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"quran-irc-bot/internal/controller"
	"quran-irc-bot/internal/entity"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/internal/repository/specification"
	"quran-irc-bot/internal/service"
	"quran-irc-bot/pkg/irc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnection struct {
	state irc.State
}

func (f fakeConnection) State() irc.State    { return f.state }
func (f fakeConnection) CurrentNick() string { return "QuranBot" }

type fakeQueries []service.ActiveQuery

func (f fakeQueries) ActiveQueries() []service.ActiveQuery { return f }

type fakeStats struct {
	summary *entity.UsageSummary
	records []*entity.QueryRecord
	specs   []specification.Specification
	err     error
}

func (f *fakeStats) RecordUserActivity(context.Context, entity.UserActivity) error       { return nil }
func (f *fakeStats) RecordChannelActivity(context.Context, entity.ChannelActivity) error { return nil }
func (f *fakeStats) LogQuery(context.Context, *entity.QueryRecord) error                 { return nil }

func (f *fakeStats) UsageSummary(context.Context) (*entity.UsageSummary, error) {
	return f.summary, f.err
}

func (f *fakeStats) FindQueries(_ context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error) {
	f.specs = specs
	return f.records, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, status controller.IStatusController, path string) (int, envelope) {
	t.Helper()
	resp, err := newApp(status).Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	stats := &fakeStats{}
	up := controller.NewStatusController(fakeConnection{state: irc.StateAuthenticated}, fakeQueries{}, stats, logger.NewNopLogger())
	down := controller.NewStatusController(fakeConnection{state: irc.StateConnecting}, fakeQueries{}, stats, logger.NewNopLogger())

	code, env := get(t, up, "/healthz")
	assert.Equal(t, 200, code)
	assert.JSONEq(t, `{"state":"authenticated","nick":"QuranBot"}`, string(env.Data))

	code, env = get(t, down, "/healthz")
	assert.Equal(t, 503, code)
	assert.JSONEq(t, `{"state":"connecting","nick":"QuranBot"}`, string(env.Data))
}

func TestActiveQueries(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	queries := fakeQueries{{Nick: "alice", Target: "#quran", ChunksSent: 4, StartedAt: started}}
	status := controller.NewStatusController(fakeConnection{}, queries, &fakeStats{}, logger.NewNopLogger())

	code, env := get(t, status, "/queries")

	assert.Equal(t, 200, code)
	assert.JSONEq(t, `[{"nick":"alice","target":"#quran","chunks_sent":4,"started_at":"2026-03-01T12:00:00Z"}]`, string(env.Data))
}

func TestUsage(t *testing.T) {
	stats := &fakeStats{summary: &entity.UsageSummary{
		Total:    3,
		Users:    []entity.UsageCount{{Name: "alice", Count: 3}},
		Channels: []entity.UsageCount{{Name: "#quran", Count: 3}},
	}}
	status := controller.NewStatusController(fakeConnection{}, fakeQueries{}, stats, logger.NewNopLogger())

	code, env := get(t, status, "/usage")

	assert.Equal(t, 200, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"total":3,"users":[{"name":"alice","count":3}],"channels":[{"name":"#quran","count":3}]}`, string(env.Data))
}

func TestUsageFailure(t *testing.T) {
	stats := &fakeStats{err: errors.New("database is locked")}
	status := controller.NewStatusController(fakeConnection{}, fakeQueries{}, stats, logger.NewNopLogger())

	code, env := get(t, status, "/usage")

	assert.Equal(t, 500, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to load usage summary", env.Message)
}

func TestHistoryBuildsSpecifications(t *testing.T) {
	id := uuid.New()
	stats := &fakeStats{records: []*entity.QueryRecord{{Id: id, Nick: "alice", Channel: "#quran", Query: "mercy", Success: true, ChunksSent: 2}}}
	status := controller.NewStatusController(fakeConnection{}, fakeQueries{}, stats, logger.NewNopLogger())

	code, env := get(t, status, "/history?nick=Alice&success=true&limit=5")

	assert.Equal(t, 200, code)
	assert.Equal(t, []specification.Specification{
		specification.ByNick{Nick: "Alice"},
		specification.BySuccess{Success: true},
		specification.Pagination{Limit: 5},
	}, stats.specs)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, id.String(), records[0]["id"])
	assert.Equal(t, float64(2), records[0]["chunks_sent"])
}

func TestHistoryDefaultsAndValidation(t *testing.T) {
	stats := &fakeStats{}
	status := controller.NewStatusController(fakeConnection{}, fakeQueries{}, stats, logger.NewNopLogger())

	code, _ := get(t, status, "/history")
	assert.Equal(t, 200, code)
	assert.Equal(t, []specification.Specification{specification.Pagination{Limit: 20}}, stats.specs)

	code, env := get(t, status, "/history?limit=500")
	assert.Equal(t, 400, code)
	assert.False(t, env.Success)
}
