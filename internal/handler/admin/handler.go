package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	adminmodel "github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	"github.com/b4bharath-source/faculty-admin-link/internal/service/assign"
	chatservice "github.com/b4bharath-source/faculty-admin-link/internal/service/chat"
	"github.com/b4bharath-source/faculty-admin-link/pkg/utils"
)

// Handler serves the admin roster and explicit selection.
type Handler struct {
	registry adminmodel.Registry
	store    *chatservice.Store
}

// New creates the admin handler.
func New(registry adminmodel.Registry, store *chatservice.Store) *Handler {
	return &Handler{registry: registry, store: store}
}

// RegisterRoutes mounts the admin endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/admins", h.handleListAdmins)
	r.Post("/admins/{adminID}/select", h.handleSelectAdmin)
}

// handleListAdmins returns the online admins; ?all=true includes
// offline entries so the UI can grey them out.
func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		utils.RespondJSON(w, http.StatusOK, h.registry.List())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.registry.ListAvailable())
}

func (h *Handler) handleSelectAdmin(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.SelectAdminExplicit(chi.URLParam(r, "adminID"))
	if err != nil {
		respondSelectError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func respondSelectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assign.ErrAdminNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, assign.ErrAdminOffline):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, chatservice.ErrNotLoggedIn):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, chatservice.ErrFacultyOnly):
		utils.RespondError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
