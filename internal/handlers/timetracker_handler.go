package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/services"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// TimeTrackerHandler handles HTTP requests for the time tracker widget.
type TimeTrackerHandler struct {
	Service *services.TimeTrackerService
}

// NewTimeTrackerHandler creates a new instance of TimeTrackerHandler.
func NewTimeTrackerHandler(service *services.TimeTrackerService) *TimeTrackerHandler {
	return &TimeTrackerHandler{Service: service}
}

// StatusHandler reports whether the caller has a running session and
// the accumulated total for today.
func (h *TimeTrackerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, startedAt := h.Service.Status(claims.UserID)
	resp := map[string]interface{}{
		"status":              status,
		"today_total_seconds": h.Service.DailyTotal(claims.UserID),
	}
	if startedAt != nil {
		resp["started_at"] = startedAt
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// StartHandler begins a new tracking session for the caller.
func (h *TimeTrackerHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		TaskName string `json:"task_name"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
		r.Body.Close()
	}

	startedAt, err := h.Service.Start(r.Context(), claims.UserID, req.TaskName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	log.WithField("userID", claims.UserID).Info("Tracking session started")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     models.SessionRunning,
		"started_at": startedAt,
	})
}

// StopHandler ends the running session and persists the entry.
func (h *TimeTrackerHandler) StopHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := h.Service.Stop(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	log.WithFields(log.Fields{
		"userID":  claims.UserID,
		"seconds": entry.DurationInSeconds,
	}).Info("Tracking session stopped")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// ListEntriesHandler returns the caller's saved time entries.
func (h *TimeTrackerHandler) ListEntriesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.Service.GetEntries(r.Context(), claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to list time entries")
		http.Error(w, "Failed to retrieve entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// SaveEntryHandler stores a client-composed entry, for sessions that
// were measured outside the server (offline or imported).
func (h *TimeTrackerHandler) SaveEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var entry models.TimeEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	saved, err := h.Service.SaveEntry(r.Context(), claims.UserID, &entry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(saved)
}

// UpdateEntryHandler edits a saved entry's task name and duration.
func (h *TimeTrackerHandler) UpdateEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		TaskName          string `json:"task_name"`
		DurationInSeconds int64  `json:"duration_in_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	entry, err := h.Service.UpdateEntry(r.Context(), claims.UserID, mux.Vars(r)["id"], req.TaskName, req.DurationInSeconds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// DeleteEntryHandler removes a saved entry.
func (h *TimeTrackerHandler) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
