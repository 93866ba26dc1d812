package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b4bharath-source/faculty-admin-link/internal/model/chat"
	"github.com/b4bharath-source/faculty-admin-link/internal/service/assign"
	chatservice "github.com/b4bharath-source/faculty-admin-link/internal/service/chat"
	"github.com/b4bharath-source/faculty-admin-link/pkg/utils"
)

// Handler exposes the session store operations over HTTP.
type Handler struct {
	store *chatservice.Store
}

// New creates the session handler.
func New(store *chatservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the session endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/queue", h.handleEnterQueue)
	r.Delete("/queue", h.handleLeaveQueue)
	r.Post("/messages", h.handleSendMessage)
	r.Post("/sessions/{sessionID}/close", h.handleCloseSession)
	r.Put("/sessions/active", h.handleSetActiveSession)
	r.Get("/sessions", h.handleListSessions)
	r.Put("/admin-selection", h.handleAdminSelectionMode)
	r.Get("/state", h.handleState)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string    `json:"name"`
		Role chat.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.Login(payload.Name, payload.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	h.store.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEnterQueue(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.EnterQueue(); err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) handleLeaveQueue(w http.ResponseWriter, _ *http.Request) {
	h.store.LeaveQueue()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.SendMessage(payload.Content); err != nil {
		respondStoreError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	h.store.CloseSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetActiveSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.SetActiveSession(payload.SessionID); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if facultyID := r.URL.Query().Get("facultyId"); facultyID != "" {
		utils.RespondJSON(w, http.StatusOK, h.store.SessionsForUser(facultyID))
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.store.Sessions())
}

func (h *Handler) handleAdminSelectionMode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.store.SetAdminSelectionMode(payload.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.Snapshot())
}

// respondStoreError maps store failures onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatservice.ErrNameRequired), errors.Is(err, chatservice.ErrInvalidRole):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chatservice.ErrNotLoggedIn):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, chatservice.ErrFacultyOnly):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, chatservice.ErrSessionNotFound), errors.Is(err, assign.ErrAdminNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatservice.ErrNoActiveSession),
		errors.Is(err, assign.ErrAdminOffline),
		errors.Is(err, assign.ErrNoAdminAvailable):
		utils.RespondError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
