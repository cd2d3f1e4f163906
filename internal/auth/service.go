package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"edunova-server/internal/models"
	"edunova-server/internal/store"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled, contact an administrator")
)

// ValidationError is the store's validation error, re-exported for callers
// of this package.
type ValidationError = store.ValidationError

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionStore is the persisted session slot: one live token maps to one
// user id. Backed by Redis in production, a map in tests.
type SessionStore interface {
	Save(token, userID string, ttl time.Duration) error
	UserID(token string) (string, error)
	Delete(token string) error
}

type Service struct {
	store      *store.Store
	sessions   SessionStore
	jwtSecret  []byte
	sessionTTL time.Duration
	log        *zap.SugaredLogger
}

func NewService(st *store.Store, sessions SessionStore, jwtSecret string, sessionTTL time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{
		store:      st,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		log:        log,
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what login and register hand back to the UI.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login checks credentials, refuses disabled accounts, then issues a token
// and records the session so logout can revoke it.
func (s *Service) Login(creds Credentials) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	users := s.store.Users(func(u models.User) bool { return strings.ToLower(u.Email) == email })
	if len(users) == 0 {
		return AuthResult{}, ErrInvalidCredentials
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, ErrAccountDisabled
	}
	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.log.Infow("login", "user", user.ID, "role", user.Role)
	return AuthResult{Token: token, User: sanitize(user)}, nil
}

// Register creates a STUDENT account after validating input, then logs the
// new user straight in.
func (s *Service) Register(in RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return AuthResult{}, ValidationError("name is required")
	}
	if !emailRegex.MatchString(email) {
		return AuthResult{}, ValidationError("invalid email format")
	}
	if len(in.Password) < 6 {
		return AuthResult{}, ValidationError("password must be at least 6 characters")
	}
	user, err := s.createUser(name, email, in.Password, models.RoleStudent, true)
	if err != nil {
		return AuthResult{}, err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.log.Infow("registered", "user", user.ID)
	return AuthResult{Token: token, User: sanitize(user)}, nil
}

// Logout revokes the session; the JWT itself stays valid until expiry but
// the middleware refuses tokens with no live session.
func (s *Service) Logout(token string) error {
	return s.sessions.Delete(token)
}

func (s *Service) issueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(token, user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// UserFromToken validates the JWT, requires a live session, and resolves the
// current user. The middleware calls this on every authenticated request.
func (s *Service) UserFromToken(tokenString string) (models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	claimedID, _ := (*claims)["user_id"].(string)
	sessionID, err := s.sessions.UserID(tokenString)
	if err != nil || sessionID != claimedID {
		return models.User{}, ErrInvalidCredentials
	}
	user, err := s.store.UserByID(claimedID)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrAccountDisabled
	}
	return user, nil
}

// ---- admin user management ----

type CreateUserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (s *Service) CreateUser(in CreateUserInput) (models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailRegex.MatchString(email) {
		return models.User{}, ValidationError("invalid email format")
	}
	if len(in.Password) < 6 {
		return models.User{}, ValidationError("password must be at least 6 characters")
	}
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	user, err := s.createUser(name, email, in.Password, role, true)
	if err != nil {
		return models.User{}, err
	}
	return sanitize(user), nil
}

func (s *Service) createUser(name, email, password string, role models.Role, active bool) (models.User, error) {
	existing := s.store.Users(func(u models.User) bool { return strings.ToLower(u.Email) == email })
	if len(existing) > 0 {
		return models.User{}, fmt.Errorf("email %s: %w", email, store.ErrAlreadyExists)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		ID:           store.NewID("user"),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
		Avatar:       "https://api.dicebear.com/7.x/avataaars/svg?seed=" + name,
		CreatedAt:    time.Now(),
	}
	s.store.InsertUser(user)
	return user, nil
}

func (s *Service) ListUsers() []models.User {
	users := s.store.Users(nil)
	for i := range users {
		users[i] = sanitize(users[i])
	}
	return users
}

func (s *Service) UpdateRole(userID string, role models.Role) (models.User, error) {
	switch role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
	default:
		return models.User{}, ValidationError("unknown role")
	}
	u, err := s.store.UpdateUser(userID, func(u *models.User) { u.Role = role })
	return sanitize(u), err
}

func (s *Service) ToggleActive(userID string) (models.User, error) {
	u, err := s.store.UpdateUser(userID, func(u *models.User) { u.IsActive = !u.IsActive })
	return sanitize(u), err
}

// DeleteUser removes the account and cascades their student records.
func (s *Service) DeleteUser(userID string) error {
	return s.store.DeleteUser(userID)
}

// sanitize strips the credential hash before a record leaves the service.
func sanitize(u models.User) models.User {
	u.PasswordHash = ""
	return u
}
