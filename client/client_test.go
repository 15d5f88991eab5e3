package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/repository"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest/middleware"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/service"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/usecase"
)

func newRelayServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	config := domain.DefaultConfig()
	config.AdminID = 999
	config.BotUsername = "anon_bot"
	relay := usecase.NewRelayUsecase(config, repository.NewStores(db))

	e := echo.New()
	auth := middleware.NewAuthMiddleware(service.NewAuthService(secret, ""))
	rest.NewHandler(relay, nil, auth).RegisterRoutes(e)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

func TestClientConversation(t *testing.T) {
	server := newRelayServer(t, "")
	c := New(server.URL)
	ctx := context.Background()

	home, err := c.Start(ctx, 2, "")
	require.NoError(t, err)
	assert.Equal(t, "home", home.Outcome)

	settings, err := c.Settings(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, home.Code, settings.Code)
	assert.Equal(t, "https://t.me/anon_bot?start=u_"+home.Code, settings.Link)

	out, err := c.Initiate(ctx, 1, home.Code)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_message", out.Outcome)

	out, err = c.Send(ctx, 1, anonbot.Voice{FileID: "voice-1"})
	require.NoError(t, err)
	require.True(t, out.Delivered())

	thread, err := c.Thread(ctx, 2, out.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), thread.SenderID)

	threads, err := c.Inbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	reply, err := c.Reply(ctx, 2, out.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reply.RecipientID)

	require.NoError(t, c.Block(ctx, 2, 1))
	_, err = c.Initiate(ctx, 1, home.Code)
	require.NoError(t, err)

	report, err := c.Report(ctx, 2, out.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, int64(999), report.AdminID)

	toggled, err := c.ToggleAnon(ctx, 2)
	require.NoError(t, err)
	assert.False(t, toggled.AnonEnabled)
	cached, err := c.Settings(ctx, 2)
	require.NoError(t, err)
	assert.False(t, cached.AnonEnabled)

	toggled, err = c.ToggleLinks(ctx, 2)
	require.NoError(t, err)
	assert.False(t, toggled.BlockLinks)
}

func TestClientAdmin(t *testing.T) {
	server := newRelayServer(t, "")
	c := New(server.URL)
	ctx := context.Background()

	err := c.Ban(ctx, 1, 5)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)

	require.NoError(t, c.Ban(ctx, 999, 5))
	stats, err := c.Stats(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Bans)

	require.NoError(t, c.Unban(ctx, 999, 5))
	stats, err = c.Stats(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Bans)
}

func TestClientToken(t *testing.T) {
	server := newRelayServer(t, "secret")
	ctx := context.Background()

	_, err := New(server.URL).Start(ctx, 1, "")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

	token, err := service.NewAuthService("secret", "").IssueToken("client-test", time.Hour)
	require.NoError(t, err)
	out, err := New(server.URL, WithToken(token), WithTimeout(time.Second)).Start(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "home", out.Outcome)
}
