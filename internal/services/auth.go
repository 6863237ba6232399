package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/instasocial/social-api/internal/models"
	"github.com/instasocial/social-api/internal/repository"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/instasocial/social-api/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo *repository.UserRepository
	producer queue.Publisher
	logger   *logger.Logger
}

func NewAuthService(userRepo *repository.UserRepository, producer queue.Publisher, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type SignupRequest struct {
	Username    string  `json:"username" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	DisplayName string  `json:"displayName" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	Bio         string  `json:"bio"`
	Avatar      *string `json:"avatar"`
	Website     *string `json:"website"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	existing, err := s.userRepo.GetByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		Website:     req.Website,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent signup with the same identifiers
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	publish(ctx, s.producer, s.logger, user.ID.String(), queue.EventUserCreated, queue.UserEventData{
		UserID:   user.ID.String(),
		Username: user.Username,
	})

	s.logger.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Login fails with ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return user, nil
}
