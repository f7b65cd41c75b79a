package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/internal/services"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// RoleHandler serves the role permission matrix and the widget catalog.
type RoleHandler struct {
	Service *services.RoleService
}

// NewRoleHandler creates a new instance of RoleHandler.
func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{Service: service}
}

func (h *RoleHandler) requireRoleManager(w http.ResponseWriter, r *http.Request) bool {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}

	role, err := h.Service.GetRoleByName(r.Context(), claims.Role)
	if err != nil || !role.CanAccessSettings {
		log.WithField("role", claims.Role).Warn("Role management denied")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// GetPermissionsHandler returns every role together with the full
// widget catalog, so the admin UI can render the permission matrix.
func (h *RoleHandler) GetPermissionsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireRoleManager(w, r) {
		return
	}

	view, err := h.Service.GetPermissionsView(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to load permissions view")
		http.Error(w, "Failed to load permissions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// UpdatePermissionsHandler updates one role's name, widget allowance
// and capability flags. A rename propagates to users on their next read.
func (h *RoleHandler) UpdatePermissionsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.requireRoleManager(w, r) {
		return
	}

	var input services.UpdatePermissionsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	role, err := h.Service.UpdatePermissions(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		log.WithError(err).Error("Failed to update role permissions")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(role)
}

// WidgetHandler lists the widget catalog.
type WidgetHandler struct {
	Repo *repository.WidgetRepository
}

// NewWidgetHandler creates a new instance of WidgetHandler.
func NewWidgetHandler(repo *repository.WidgetRepository) *WidgetHandler {
	return &WidgetHandler{Repo: repo}
}

// ListWidgetsHandler returns every widget the dashboard knows about.
func (h *WidgetHandler) ListWidgetsHandler(w http.ResponseWriter, r *http.Request) {
	widgets, err := h.Repo.GetAllWidgets(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list widgets")
		http.Error(w, "Failed to retrieve widgets", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(widgets)
}
