package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest/middleware"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/present/rest/presenter"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/service"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/usecase"
)

type Handler struct {
	relay  *usecase.RelayUsecase
	signal *service.SignalService
	auth   *middleware.AuthMiddleware
}

// NewHandler wires the HTTP surface. signal may be nil, which disables /realtime.
func NewHandler(
	relay *usecase.RelayUsecase,
	signal *service.SignalService,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		relay:  relay,
		signal: signal,
		auth:   auth,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.handleHealth)

	v1 := e.Group("/v1", h.auth.IdentifyTransport, h.auth.RequireTransport)
	v1.POST("/start", h.handleStart)
	v1.POST("/initiate", h.handleInitiate)
	v1.POST("/content", h.handleContent)
	v1.POST("/actions/reply", h.handleReply)
	v1.POST("/actions/block", h.handleBlock)
	v1.POST("/actions/report", h.handleReport)
	v1.GET("/identities/:id/settings", h.handleSettings)
	v1.POST("/identities/:id/toggle-anon", h.handleToggleAnon)
	v1.POST("/identities/:id/toggle-links", h.handleToggleLinks)
	v1.GET("/identities/:id/inbox", h.handleInbox)
	v1.GET("/identities/:id/threads/:tid", h.handleOpenThread)
	v1.POST("/admin/ban", h.handleBan)
	v1.POST("/admin/unban", h.handleUnban)
	v1.GET("/admin/stats", h.handleStats)

	e.GET("/realtime", h.handleRealtime, h.auth.IdentifyTransport, h.auth.RequireTransport)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) outcome(c echo.Context, o domain.Outcome, err error) error {
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Outcome(o, h.relay.Identity().Link))
}

type StartRequest struct {
	SenderID int64  `json:"senderId"`
	Argument string `json:"argument"`
}

func (h *Handler) handleStart(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.SenderID == 0 {
		return presenter.BadRequestMessage(c, "senderId is required")
	}

	out, err := h.relay.Start(c.Request().Context(), req.SenderID, req.Argument)
	return h.outcome(c, out, err)
}

type InitiateRequest struct {
	SenderID int64  `json:"senderId"`
	Code     string `json:"code"`
}

func (h *Handler) handleInitiate(c echo.Context) error {
	var req InitiateRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.SenderID == 0 || req.Code == "" {
		return presenter.BadRequestMessage(c, "senderId and code are required")
	}

	out, err := h.relay.Initiate(c.Request().Context(), req.SenderID, req.Code)
	return h.outcome(c, out, err)
}

type ContentRequest struct {
	SenderID int64                   `json:"senderId"`
	Content  anonbot.ContentEnvelope `json:"content"`
}

func (h *Handler) handleContent(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.SenderID == 0 {
		return presenter.BadRequestMessage(c, "senderId is required")
	}
	content, err := req.Content.Decode()
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	out, err := h.relay.Deliver(c.Request().Context(), req.SenderID, content)
	return h.outcome(c, out, err)
}

type ThreadActionRequest struct {
	IdentityID int64 `json:"identityId"`
	ThreadID   int64 `json:"threadId"`
}

func (h *Handler) handleReply(c echo.Context) error {
	var req ThreadActionRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	out, err := h.relay.Reply(c.Request().Context(), req.IdentityID, req.ThreadID)
	return h.outcome(c, out, err)
}

type BlockRequest struct {
	IdentityID int64 `json:"identityId"`
	SenderID   int64 `json:"senderId"`
}

func (h *Handler) handleBlock(c echo.Context) error {
	var req BlockRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.IdentityID == 0 || req.SenderID == 0 {
		return presenter.BadRequestMessage(c, "identityId and senderId are required")
	}

	if err := h.relay.BlockSender(c.Request().Context(), req.IdentityID, req.SenderID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleReport(c echo.Context) error {
	var req ThreadActionRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	report, err := h.relay.ReportThread(c.Request().Context(), req.IdentityID, req.ThreadID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, report)
}

func identityParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func (h *Handler) settingsView(c echo.Context, s domain.Settings, err error) error {
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.SettingsView{Settings: s, Link: h.relay.Identity().Link(s)})
}

func (h *Handler) handleSettings(c echo.Context) error {
	id, err := identityParam(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	s, err := h.relay.Identity().Settings(c.Request().Context(), id)
	return h.settingsView(c, s, err)
}

func (h *Handler) handleToggleAnon(c echo.Context) error {
	id, err := identityParam(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	s, err := h.relay.Identity().ToggleAnon(c.Request().Context(), id)
	return h.settingsView(c, s, err)
}

func (h *Handler) handleToggleLinks(c echo.Context) error {
	id, err := identityParam(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	s, err := h.relay.Identity().ToggleBlockLinks(c.Request().Context(), id)
	return h.settingsView(c, s, err)
}

func (h *Handler) handleInbox(c echo.Context) error {
	id, err := identityParam(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	threads, err := h.relay.Inbox(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, threads)
}

func (h *Handler) handleOpenThread(c echo.Context) error {
	id, err := identityParam(c, "id")
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	tid, err := identityParam(c, "tid")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	thread, err := h.relay.OpenThread(c.Request().Context(), id, tid)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, thread)
}

type AdminRequest struct {
	IdentityID int64 `json:"identityId"`
	TargetID   int64 `json:"targetId"`
}

func (h *Handler) handleBan(c echo.Context) error {
	var req AdminRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.TargetID == 0 {
		return presenter.BadRequestMessage(c, "targetId is required")
	}

	if err := h.relay.Ban(c.Request().Context(), req.IdentityID, req.TargetID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleUnban(c echo.Context) error {
	var req AdminRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.TargetID == 0 {
		return presenter.BadRequestMessage(c, "targetId is required")
	}

	if err := h.relay.Unban(c.Request().Context(), req.IdentityID, req.TargetID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleStats(c echo.Context) error {
	actor, err := strconv.ParseInt(c.QueryParam("identityId"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid identityId")
	}

	stats, err := h.relay.Stats(c.Request().Context(), actor)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, stats)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Request is a client frame on the realtime socket.
type Request struct {
	Type       string  `json:"type"`
	Identities []int64 `json:"identities"`
}

// interested reports whether an event concerns one of the listened identities.
func interested(event anonbot.Event, identities map[int64]struct{}) bool {
	switch event.Type {
	case anonbot.EventReported:
		_, ok := identities[event.AdminID]
		return ok
	default:
		_, ok := identities[event.RecipientID]
		return ok
	}
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not configured"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan anonbot.Event)
	subscriptions := make(chan []int64)
	quit := make(chan struct{})

	go func() {
		if err := h.signal.Realtime(ctx, output); err != nil && ctx.Err() == nil {
			slog.ErrorContext(
				ctx, "Realtime subscription failed",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
		}
	}()

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case subscriptions <- req.Identities:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, "Socket subscribe",
					slog.Any("identities", req.Identities),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	listening := map[int64]struct{}{}
	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case ids := <-subscriptions:
			for _, id := range ids {
				listening[id] = struct{}{}
			}
		case event := <-output:
			if !interested(event, listening) {
				continue
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
