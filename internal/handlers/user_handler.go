package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mihira/deskpulse/internal/config"
	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/services"
	jwtutil "github.com/mihira/deskpulse/pkg/jwt"
	"github.com/mihira/deskpulse/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service     *services.UserService
	RoleService *services.RoleService
	Config      *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, roleService *services.RoleService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service:     service,
		RoleService: roleService,
		Config:      cfg,
	}
}

type registerRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Role             string   `json:"role"`
	SecurityPin      string   `json:"security_pin"`
	PermittedWidgets []string `json:"permitted_widgets"`
}

// RegisterUserHandler starts the OTP-gated signup: the user is held in
// a pending state until the emailed code is confirmed.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("RegisterUserHandler called")
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		SecurityPin:      req.SecurityPin,
		PermittedWidgets: req.PermittedWidgets,
	}

	token, err := h.Service.BeginSignup(r.Context(), user, req.Password, req.Role)
	if err != nil {
		log.WithError(err).Warn("Failed to begin signup")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"signup_token": token,
		"message":      "Verification code sent. It expires in 5 minutes.",
	})
}

// VerifyOTPHandler completes signup when the code matches.
func (h *UserHandler) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SignupToken string `json:"signup_token"`
		OTP         string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.ConfirmSignup(r.Context(), req.SignupToken, req.OTP)
	if err != nil {
		log.WithError(err).Warn("OTP verification failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithField("userID", user.ID).Info("User registered successfully")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log.Info("LoginUserHandler called")
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{
			"email": credentials.Email,
			"error": err,
		}).Warn("Authentication failed")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID).Info("User logged in successfully")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}

// CreateUserHandler lets an administrator add an account directly,
// skipping the email verification round trip.
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	if h.requireCapability(w, r, func(role *models.Role) bool { return role.CanAddUser }) == nil {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		SecurityPin:      req.SecurityPin,
		PermittedWidgets: req.PermittedWidgets,
	}

	created, err := h.Service.CreateUser(r.Context(), user, req.Password, req.Role)
	if err != nil {
		log.WithError(err).Warn("Failed to create user")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sanitizeUser(*created))
}

// requireCapability loads the caller's role and checks one capability
// flag. Returns nil claims when the check failed (response written).
func (h *UserHandler) requireCapability(w http.ResponseWriter, r *http.Request, allowed func(*models.Role) bool) *jwtutil.Claims {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	role, err := h.RoleService.GetRoleByName(r.Context(), claims.Role)
	if err != nil || !allowed(role) {
		log.WithField("role", claims.Role).Warn("Capability check failed")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil
	}
	return claims
}

// ListUsersHandler serves the admin user directory with search, sort
// and today-filter. Non-admin viewers never see Private accounts.
func (h *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims := h.requireCapability(w, r, func(role *models.Role) bool { return role.CanViewUsers })
	if claims == nil {
		return
	}

	query := r.URL.Query()
	users, err := h.Service.ListUsers(r.Context(), claims.Role, services.UserListFilter{
		Search:    query.Get("search"),
		SortOrder: query.Get("sort"),
		TodayOnly: query.Get("filter") == "today",
	})
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		http.Error(w, "Failed to retrieve users", http.StatusInternalServerError)
		return
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// GetUserHandler fetches one user. Non-admins may only read their own
// profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedID := mux.Vars(r)["id"]
	if requestedID != claims.UserID {
		role, err := h.RoleService.GetRoleByName(r.Context(), claims.Role)
		if err != nil || !role.CanViewUsers {
			http.Error(w, "Forbidden: You can only access your own profile", http.StatusForbidden)
			return
		}
	}

	user, err := h.Service.GetUser(r.Context(), requestedID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizeUser(*user))
}

// sanitizeUser strips credentials before a record leaves the API. The
// persisted record keeps them, so the same struct cannot carry json:"-".
func sanitizeUser(u models.User) models.User {
	u.HashedPassword = ""
	u.SecurityPin = ""
	return u
}

// UpdateUserHandler applies an admin edit to a user.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	if h.requireCapability(w, r, func(role *models.Role) bool { return role.CanEditUser }) == nil {
		return
	}

	var input services.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateUser(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		log.WithError(err).Error("Failed to update user")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizeUser(*updated))
}

// DeleteUserHandler removes a user by ID.
func (h *UserHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if h.requireCapability(w, r, func(role *models.Role) bool { return role.CanDeleteUser }) == nil {
		return
	}

	if err := h.Service.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// LoginHistoryHandler returns a user's login timestamps, optionally
// windowed to the last 7 or 30 days.
func (h *UserHandler) LoginHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedID := mux.Vars(r)["id"]
	if requestedID != claims.UserID {
		if h.requireCapability(w, r, func(role *models.Role) bool { return role.CanViewUsers }) == nil {
			return
		}
	}

	history, err := h.Service.LoginHistory(r.Context(), requestedID, r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

// GetMeHandler returns the caller's own profile.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizeUser(*user))
}
