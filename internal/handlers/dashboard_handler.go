package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mihira/deskpulse/internal/config"
	"github.com/mihira/deskpulse/internal/services"
	jwtutil "github.com/mihira/deskpulse/pkg/jwt"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// DashboardHandler composes the dashboard view and serves the note
// and habit widgets.
type DashboardHandler struct {
	Service *services.DashboardService
	Users   *services.UserService
	Notes   *services.NoteService
	Habits  *services.HabitService
	Config  *config.Config
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(service *services.DashboardService, users *services.UserService, notes *services.NoteService, habits *services.HabitService, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{
		Service: service,
		Users:   users,
		Notes:   notes,
		Habits:  habits,
		Config:  cfg,
	}
}

// GetDashboardHandler returns the caller's composed dashboard. Widget
// sections that fail to load come back empty rather than failing the
// whole page.
func (h *DashboardHandler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.Service.GetDashboard(r.Context(), claims.UserID, claims.PinVerified)
	if err != nil {
		log.WithError(err).Error("Failed to build dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

// VerifyPinHandler checks the submitted security PIN and, on success,
// issues a short-lived token carrying the pin_verified claim.
func (h *DashboardHandler) VerifyPinHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Users.VerifySecurityPin(r.Context(), claims.UserID, req.Pin); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GeneratePinToken(claims, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate pin token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":        token,
		"pin_verified": true,
	})
}

// ListNotesHandler returns the caller's notes, newest first.
func (h *DashboardHandler) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notes, err := h.Notes.GetNotes(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to retrieve notes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notes)
}

// AddNoteHandler creates a note for the caller.
func (h *DashboardHandler) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	note, err := h.Notes.AddNote(r.Context(), claims.UserID, req.Text)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(note)
}

// EditNoteHandler updates a note's text.
func (h *DashboardHandler) EditNoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Notes.EditNote(r.Context(), claims.UserID, mux.Vars(r)["id"], req.Text); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// DeleteNoteHandler removes a note.
func (h *DashboardHandler) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Notes.DeleteNote(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// ListHabitsHandler returns the caller's habits.
func (h *DashboardHandler) ListHabitsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habits, err := h.Habits.GetHabits(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to retrieve habits", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(habits)
}

// AddHabitHandler creates a habit for the caller.
func (h *DashboardHandler) AddHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.AddHabitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	habit, err := h.Habits.AddHabit(r.Context(), claims.UserID, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(habit)
}

// ToggleHabitHandler flips today's completion mark on a habit.
func (h *DashboardHandler) ToggleHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	habit, err := h.Habits.ToggleToday(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(habit)
}

// DeleteHabitHandler removes a habit.
func (h *DashboardHandler) DeleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Habits.DeleteHabit(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
