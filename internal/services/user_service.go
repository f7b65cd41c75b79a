package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mihira/deskpulse/internal/models"
	"github.com/mihira/deskpulse/internal/repository"
	"github.com/mihira/deskpulse/pkg/email"
	"github.com/mihira/deskpulse/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	otpDigits = 6
	otpTTL    = 5 * time.Minute
)

// pendingSignup holds an unconfirmed user transiently until the OTP is
// verified or expires. Never persisted.
type pendingSignup struct {
	user      models.User
	plainPass string
	otp       string
	expiresAt time.Time
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo   *repository.UserRepository
	roles  *repository.RoleRepository
	mailer email.Sender

	mu      sync.Mutex
	pending map[string]pendingSignup
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, roles *repository.RoleRepository, mailer email.Sender) *UserService {
	return &UserService{
		repo:    repo,
		roles:   roles,
		mailer:  mailer,
		pending: make(map[string]pendingSignup),
	}
}

// generateOTP returns a zero-padded numeric one-time code.
func generateOTP(digits int) (string, error) {
	max := uint64(1)
	for i := 0; i < digits; i++ {
		max *= 10
	}

	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	num := binary.LittleEndian.Uint64(b) % max
	return fmt.Sprintf(fmt.Sprintf("%%0%dd", digits), num), nil
}

// BeginSignup validates a registration, parks the user as a pending
// signup and emails a one-time code. Returns the signup token the
// client must present together with the code.
func (s *UserService) BeginSignup(ctx context.Context, user *models.User, password, roleName string) (string, error) {
	logger.Log.Info("Registering new user")

	if user.Email == "" || user.Name == "" || password == "" {
		logger.Log.Warn("Missing required fields during registration")
		return "", fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(user.Email) {
		logger.Log.WithField("email", user.Email).Warn("Invalid email format during registration")
		return "", fmt.Errorf("invalid email format")
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, user.Email); existing != nil {
		logger.Log.WithField("email", user.Email).Warn("Email already in use")
		return "", fmt.Errorf("email already in use")
	}

	if roleName == "" {
		roleName = models.RoleUser
	}
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return "", fmt.Errorf("unknown role %q", roleName)
	}
	user.RoleID = role.ID
	user.Role = role.Name
	user.PermittedWidgets = s.authorizedWidgets(role, user.PermittedWidgets)
	user.IsEmailVerified = false

	otp, err := generateOTP(otpDigits)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %v", err)
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.pending[token] = pendingSignup{
		user:      *user,
		plainPass: password,
		otp:       otp,
		expiresAt: time.Now().Add(otpTTL),
	}
	s.mu.Unlock()

	body := fmt.Sprintf("Your verification code is: %s\n\nIt expires in 5 minutes.", otp)
	if err := s.mailer.Send(user.Email, "Complete User Creation", body); err != nil {
		logger.Log.WithError(err).Error("Failed to send verification email")
		return "", fmt.Errorf("failed to send verification email")
	}

	logger.Log.Infof("Sent verification code to %s", user.Email)
	return token, nil
}

// ConfirmSignup checks the submitted code against the pending signup
// and persists the user on success.
func (s *UserService) ConfirmSignup(ctx context.Context, token, otp string) (*models.User, error) {
	s.mu.Lock()
	signup, ok := s.pending[token]
	s.mu.Unlock()

	if !ok || signup.otp != otp || time.Now().After(signup.expiresAt) {
		logger.Log.Warn("Invalid or expired OTP during signup confirmation")
		return nil, fmt.Errorf("invalid or expired OTP")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(signup.plainPass), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := signup.user
	user.HashedPassword = string(hashed)
	user.IsEmailVerified = true

	created, err := s.repo.CreateUser(ctx, &user)
	if err != nil {
		logger.Log.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()

	logger.Log.WithFields(logrus.Fields{
		"userID": created.ID,
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// CreateUser persists a user directly without the OTP round trip. Used
// by administrators adding accounts on someone's behalf.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password, roleName string) (*models.User, error) {
	if user.Email == "" || user.Name == "" || password == "" {
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(user.Email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if existing, _ := s.repo.GetUserByEmail(ctx, user.Email); existing != nil {
		return nil, fmt.Errorf("email already in use")
	}

	if roleName == "" {
		roleName = models.RoleUser
	}
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("unknown role %q", roleName)
	}
	user.RoleID = role.ID
	user.Role = role.Name
	user.PermittedWidgets = s.authorizedWidgets(role, user.PermittedWidgets)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashed)
	user.IsEmailVerified = true

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logger.Log.WithError(err).Error("User creation failed")
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"userID": created.ID,
		"role":   created.Role,
	}).Info("User created by administrator")
	return created, nil
}

// PurgeExpiredSignups drops pending signups whose code has lapsed.
// Called from the scheduler.
func (s *UserService) PurgeExpiredSignups() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := time.Now()
	for token, signup := range s.pending {
		if now.After(signup.expiresAt) {
			delete(s.pending, token)
			removed++
		}
	}
	return removed
}

// AuthenticateUser verifies the email and password, records the login
// and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	logger.Log.WithField("email", userEmail).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logger.Log.WithField("email", userEmail).Warn("User not found")
		return nil, fmt.Errorf("user not found")
	}

	if !user.IsEmailVerified {
		logger.Log.WithField("email", userEmail).Warn("Attempt to login with unverified email")
		return nil, fmt.Errorf("email not verified")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logger.Log.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now()
	user.LoginHistory = append(user.LoginHistory, now)
	user.LoginCount++
	user.LastLoginAt = &now
	if _, err := s.repo.UpdateUser(ctx, user); err != nil {
		logger.Log.WithError(err).Warn("Failed to record login")
	}

	logger.Log.WithField("userID", user.ID).Info("User authenticated successfully")
	return user, nil
}

// VerifySecurityPin compares the submitted PIN with the user's stored
// one. Users without a PIN cannot unlock gated widgets this way.
func (s *UserService) VerifySecurityPin(ctx context.Context, userID, pin string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found")
	}
	if !user.HasSecurityPin() || user.SecurityPin != pin {
		logger.Log.WithField("userID", userID).Warn("Invalid security PIN")
		return fmt.Errorf("invalid PIN")
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to retrieve user")
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return user, nil
}

// UserListFilter narrows and orders the admin user listing.
type UserListFilter struct {
	Search    string
	SortOrder string
	TodayOnly bool
}

// ListUsers returns users for the admin directory. Callers without the
// admin role never see Private-role accounts.
func (s *UserService) ListUsers(ctx context.Context, callerRole string, filter UserListFilter) ([]models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}

	isAdmin := strings.EqualFold(callerRole, models.RoleAdmin)
	filtered := users[:0]
	for _, user := range users {
		if !isAdmin && strings.EqualFold(user.Role, models.RolePrivate) {
			continue
		}
		if filter.TodayOnly {
			if user.LastLoginAt == nil || !sameDay(*user.LastLoginAt, time.Now()) {
				continue
			}
		}
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), search) &&
				!strings.Contains(strings.ToLower(user.Email), search) {
				continue
			}
		}
		filtered = append(filtered, user)
	}

	sortUsers(filtered, filter.SortOrder)
	return filtered, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortUsers(users []models.User, order string) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		switch order {
		case "name_desc":
			return a.Name > b.Name
		case "email":
			return a.Email < b.Email
		case "email_desc":
			return a.Email > b.Email
		case "login":
			return a.LoginCount < b.LoginCount
		case "login_desc":
			return a.LoginCount > b.LoginCount
		case "date":
			return lastLogin(a).Before(lastLogin(b))
		case "date_desc":
			return lastLogin(b).Before(lastLogin(a))
		case "role":
			return a.Role < b.Role
		case "role_desc":
			return a.Role > b.Role
		default:
			return a.Name < b.Name
		}
	})
}

func lastLogin(u models.User) time.Time {
	if u.LastLoginAt == nil {
		return time.Time{}
	}
	return *u.LastLoginAt
}

// UpdateUserInput carries the admin-editable user fields.
type UpdateUserInput struct {
	Name             string
	Email            string
	SecurityPin      string
	IsEmailVerified  bool
	Role             string
	PermittedWidgets []string
	Password         string
}

// UpdateUser applies an admin edit. The requested widget list is
// filtered through the target role's allowance; the password changes
// only when a new one is provided.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	role, err := s.roles.GetRoleByName(ctx, input.Role)
	if err != nil {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	user.Name = input.Name
	user.Email = input.Email
	user.SecurityPin = input.SecurityPin
	user.IsEmailVerified = input.IsEmailVerified
	user.RoleID = role.ID
	user.Role = role.Name
	user.PermittedWidgets = s.authorizedWidgets(role, input.PermittedWidgets)

	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		user.HashedPassword = string(hashed)
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	logger.Log.WithField("userID", updated.ID).Info("User updated successfully in service")
	return updated, nil
}

// authorizedWidgets filters a requested widget list through the role's
// permitted set. Admins are unrestricted. Note the stored result is
// cosmetic either way: reads re-derive widgets from the role.
func (s *UserService) authorizedWidgets(role *models.Role, requested []string) []string {
	if strings.EqualFold(role.Name, models.RoleAdmin) {
		return requested
	}

	allowed := make(map[string]struct{}, len(role.PermittedWidgets))
	for _, w := range role.PermittedWidgets {
		allowed[w] = struct{}{}
	}

	var granted []string
	for _, w := range requested {
		if _, ok := allowed[w]; ok {
			granted = append(granted, w)
		}
	}
	return granted
}

// DeleteUser deletes a user by ID.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	logger.Log.WithField("userID", id).Info("User deleted successfully")
	return nil
}

// LoginHistory returns a user's login timestamps, newest first, within
// the requested window ("all", "7days", "30days").
func (s *UserService) LoginHistory(ctx context.Context, id, window string) ([]time.Time, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	cutoff := time.Time{}
	switch window {
	case "7days":
		cutoff = time.Now().AddDate(0, 0, -7)
	case "30days":
		cutoff = time.Now().AddDate(0, 0, -30)
	}

	var history []time.Time
	for _, ts := range user.LoginHistory {
		if ts.After(cutoff) {
			history = append(history, ts)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].After(history[j]) })
	return history, nil
}
