package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal-chatbot-be/internal/dto"
	"legal-chatbot-be/internal/entity"
	"legal-chatbot-be/internal/pkg/logger"
	"legal-chatbot-be/internal/pkg/serverutils"
	"legal-chatbot-be/internal/repository/specification"
	"legal-chatbot-be/internal/repository/unitofwork"
	"legal-chatbot-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	jwtSecret  string
	jwtTTL     time.Duration
	logger     logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, jwtSecret string, jwtTTL time.Duration, log logger.ILogger) IAuthService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &authService{
		uowFactory: uowFactory,
		publisher:  publisher,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
		logger:     log,
	}
}

// Register creates the account and signs the user straight in.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.LoginResponse, error) {
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.UserRoleUser,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, events.TypeUserRegistered, user)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	s.publish(ctx, events.TypeUserLogin, user)
	return s.issue(user)
}

func (s *authService) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := serverutils.IssueToken(s.jwtSecret, user.Id.String(), string(user.Role), s.jwtTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtTTL.Seconds()),
		User:        toProfile(user),
	}, nil
}

func (s *authService) publish(ctx context.Context, eventType string, user *entity.User) {
	err := s.publisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"user_id": user.Id.String(),
		"email":   user.Email,
	}))
	if err != nil {
		s.logger.Warn("AUTH", "Event publish failed", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

func toProfile(user *entity.User) dto.UserProfileResponse {
	res := dto.UserProfileResponse{
		Id:        user.Id,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if user.ProfilePictureURL != nil {
		res.ProfilePictureURL = *user.ProfilePictureURL
	}
	return res
}
