package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/trip-planner/internal/notify"
	"github.com/example/trip-planner/internal/session"
)

// sessionService is the slice of the planning engine the admin surface drives.
type sessionService interface {
	CreateSession(ctx context.Context, params session.CreateSessionParams) (session.SessionState, error)
	EndSession(ctx context.Context, params session.EndSessionParams) (bool, error)
	ListSessions(ctx context.Context) ([]session.SessionSummary, error)
	UserSessions(ctx context.Context, userID string) ([]session.SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (session.SessionState, error)
	UpdateSettings(ctx context.Context, params session.UpdateSettingsParams) (session.Settings, error)
	ExportSession(ctx context.Context, sessionID string) (session.SessionExport, error)
	ShareableLink(sessionID string) string
	ScheduleActivities(ctx context.Context, sessionID string, connector session.CalendarConnector, credential string) (session.SchedulePlan, error)
	TallyAll(ctx context.Context, sessionID string) (map[string]session.Tally, error)
}

// ChatNotifier posts share announcements to the external chat system.
type ChatNotifier interface {
	Share(ctx context.Context, msg notify.ShareMessage) error
}

type SessionHandler struct {
	service   sessionService
	calendar  session.CalendarConnector
	chat      ChatNotifier
	responder responder
	logger    *slog.Logger
}

// NewSessionHandler constructs the handler. calendar and chat may be nil;
// scheduling then stays a preview and shares report delivered=false.
func NewSessionHandler(service sessionService, calendar session.CalendarConnector, chat ChatNotifier, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{
		service:   service,
		calendar:  calendar,
		chat:      chat,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if strings.TrimSpace(principal.UserID) == "" {
		h.log(r.Context(), "Create", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing caller identity")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCaller)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode create request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	state, err := h.service.CreateSession(r.Context(), session.CreateSessionParams{
		CreatorID:   principal.UserID,
		CreatorName: req.CreatorName,
		Name:        req.Name,
		TeamID:      req.TeamID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "session creation failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", state.ID).InfoContext(r.Context(), "session created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: state})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "session list failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(r.Context(), "sessions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Get", "session_id", sessionID)
	state, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session read failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: state})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if strings.TrimSpace(principal.UserID) == "" && !principal.Privileged {
		h.log(r.Context(), "End", "session_id", sessionID, "error_kind", "unauthorized").ErrorContext(r.Context(), "missing caller identity")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCaller)
		return
	}

	logger := h.log(r.Context(), "End", "principal_id", principal.UserID, "session_id", sessionID)

	ended, err := h.service.EndSession(r.Context(), session.EndSessionParams{
		SessionID:  sessionID,
		EndedBy:    principal.UserID,
		Privileged: principal.Privileged,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "session end failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("ended", ended).InfoContext(r.Context(), "session end processed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, endSessionResponse{Ended: ended})
}

func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if strings.TrimSpace(principal.UserID) == "" && !principal.Privileged {
		h.log(r.Context(), "UpdateSettings", "session_id", sessionID, "error_kind", "unauthorized").ErrorContext(r.Context(), "missing caller identity")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCaller)
		return
	}

	var patch session.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.log(r.Context(), "UpdateSettings", "session_id", sessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode settings patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateSettings", "principal_id", principal.UserID, "session_id", sessionID)

	settings, err := h.service.UpdateSettings(r.Context(), session.UpdateSettingsParams{
		SessionID:  sessionID,
		UserID:     principal.UserID,
		Privileged: principal.Privileged,
		Patch:      patch,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "settings update failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "settings updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: settings})
}

func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Export", "session_id", sessionID)
	export, err := h.service.ExportSession(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session export failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session exported")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, export)
}

func (h *SessionHandler) Votes(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Votes", "session_id", sessionID)
	tallies, err := h.service.TallyAll(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "tally read failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, votesResponse{Votes: tallies})
}

func (h *SessionHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	// The body is optional; an absent one means no calendar credential.
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log(r.Context(), "Schedule", "session_id", sessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Schedule", "session_id", sessionID)

	plan, err := h.service.ScheduleActivities(r.Context(), sessionID, h.calendar, req.Credential)
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule export failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_count", len(plan.Events), "warning_count", len(plan.Warnings), "delivered", plan.Delivered).
		InfoContext(r.Context(), "schedule exported")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, schedulePlanResponse{Plan: plan})
}

func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := pathSessionID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Share", "session_id", sessionID)

	state, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		logger.ErrorContext(r.Context(), "session read failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	link := h.service.ShareableLink(sessionID)
	message := fmt.Sprintf("Join the trip planning session %q: %s", state.Name, link)

	delivered := false
	if h.chat != nil {
		shareErr := h.chat.Share(r.Context(), notify.ShareMessage{
			SessionID:   sessionID,
			SessionName: state.Name,
			Link:        link,
			Text:        message,
		})
		if shareErr != nil {
			logger.WarnContext(r.Context(), "chat share failed", "error", shareErr)
		} else {
			delivered = true
		}
	}

	logger.With("delivered", delivered).InfoContext(r.Context(), "session shared")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, shareResponse{
		Link:      link,
		Message:   message,
		Delivered: delivered,
	})
}

func (h *SessionHandler) UserSessions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := strings.TrimSpace(mux.Vars(r)["id"])
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	logger := h.log(r.Context(), "UserSessions", "user_id", userID)
	sessions, err := h.service.UserSessions(r.Context(), userID)
	if err != nil {
		logger.ErrorContext(r.Context(), "user session list failed", "error", err, "error_kind", session.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(r.Context(), "user sessions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func pathSessionID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	return id, id != ""
}

type createSessionRequest struct {
	Name        string `json:"name"`
	TeamID      string `json:"teamId"`
	CreatorName string `json:"creatorName"`
}

type sessionResponse struct {
	Session session.SessionState `json:"session"`
}

type listSessionsResponse struct {
	Sessions []session.SessionSummary `json:"sessions"`
}

type endSessionResponse struct {
	Ended bool `json:"ended"`
}

type settingsResponse struct {
	Settings session.Settings `json:"settings"`
}

type votesResponse struct {
	Votes map[string]session.Tally `json:"votes"`
}

type scheduleRequest struct {
	Credential string `json:"credential"`
}

type schedulePlanResponse struct {
	Plan session.SchedulePlan `json:"plan"`
}

type shareResponse struct {
	Link      string `json:"link"`
	Message   string `json:"message"`
	Delivered bool   `json:"delivered"`
}
