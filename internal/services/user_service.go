package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"jobcard-backend/internal/auth"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user with this email already exists")
)

// UserService keeps shop-floor accounts in the users slot and issues
// tokens on login.
type UserService struct {
	Store      *store.Store[models.User]
	JWTManager *auth.JWTManager
}

func NewUserService(st *store.Store[models.User], jwtManager *auth.JWTManager) *UserService {
	return &UserService{Store: st, JWTManager: jwtManager}
}

func (s *UserService) byEmail(ctx context.Context, email string) (models.User, bool, error) {
	users, err := s.Store.List(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// CreateUser hashes password and stores a new active account.
func (s *UserService) CreateUser(ctx context.Context, name, email, password, role string) (*models.UserProfile, error) {
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email, and password are required")
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "operator"
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	err = retryOnConflict(ctx, func() error {
		if _, found, err := s.byEmail(ctx, email); err != nil {
			return err
		} else if found {
			return ErrUserExists
		}
		_, err := s.Store.Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// EnsureAdmin creates the bootstrap admin when the users slot holds no
// account with that email. A blank password leaves the slot alone.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.CreateUser(ctx, name, email, password, "admin")
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	if err == nil {
		log.Printf("[Auth] Created admin account %s", email)
	}
	return err
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.UserProfile, error) {
	users, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

// Login authenticates a user and returns a JWT token
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}
	user, found, err := s.byEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !found || !user.IsActive || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.JWTManager.GenerateToken(&user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user.Profile()}, nil
}
