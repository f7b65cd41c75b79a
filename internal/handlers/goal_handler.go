package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/services"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service *services.GoalService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(service *services.GoalService) *GoalHandler {
	return &GoalHandler{Service: service}
}

// CreateGoalHandler handles the creation of a new goal.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		log.WithError(err).Warn("Failed to decode goal payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	view, err := h.Service.CreateGoal(r.Context(), claims.UserID, &goal)
	if err != nil {
		log.WithError(err).Warn("Failed to create goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithFields(log.Fields{
		"goalID": view.ID,
		"userID": claims.UserID,
	}).Info("Goal created successfully")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(view)
}

// GetGoalHandler retrieves a single goal with its computed metrics.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.Service.GetGoal(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// GetGoalsHandler lists the caller's goals, optionally filtered by
// category via ?category=.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	views, err := h.Service.GetGoals(r.Context(), claims.UserID, r.URL.Query().Get("category"))
	if err != nil {
		log.WithError(err).Error("Failed to list goals")
		http.Error(w, "Failed to retrieve goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// UpdateGoalHandler replaces a goal's editable fields.
func (h *GoalHandler) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	view, err := h.Service.UpdateGoal(r.Context(), mux.Vars(r)["id"], claims.UserID, &goal)
	if err != nil {
		log.WithError(err).Warn("Failed to update goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

type progressRequest struct {
	Value   float64 `json:"value"`
	LogDate *string `json:"log_date,omitempty"`
}

// UpdateProgressHandler sets the goal's current value and records it
// in the daily log for the given (or today's) date.
func (h *GoalHandler) UpdateProgressHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var logDate *time.Time
	if req.LogDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.LogDate)
		if err != nil {
			http.Error(w, "log_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		logDate = &parsed
	}

	view, err := h.Service.UpdateProgress(r.Context(), mux.Vars(r)["id"], claims.UserID, req.Value, logDate)
	if err != nil {
		log.WithError(err).Warn("Failed to update goal progress")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// SyncLogsHandler rebuilds the goal's daily log span and rederives its
// current value from the logged actuals.
func (h *GoalHandler) SyncLogsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.Service.SyncLogs(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// ToggleCompleteHandler flips a goal between completed and active.
func (h *GoalHandler) ToggleCompleteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.Service.ToggleComplete(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// GetMetricsHandler returns only the derived metrics for a goal.
func (h *GoalHandler) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.Service.GetGoal(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view.Metrics)
}

// DeleteGoalHandler removes a goal.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteGoal(r.Context(), mux.Vars(r)["id"], claims.UserID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	log.WithField("goalID", mux.Vars(r)["id"]).Info("Goal deleted successfully")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
