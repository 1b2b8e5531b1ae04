package services

import (
	"context"
	"errors"

	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	pkgservice "sourcing-system/pkg/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.TokenPairDTO, error)
	Profile(ctx context.Context, actor entities.Actor) (*dto.ProfileDTO, error)
}

type AuthService struct {
	userRepo repositories.UserRepositoryInterface
	jwtSvc   pkgservice.JWTService
	logger   *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	jwtSvc pkgservice.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		logger:   logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		// Не раскрываем, существует ли пользователь.
		s.logger.Warn("AuthService: попытка входа с неизвестным email")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Warn("AuthService: неверный пароль", zap.String("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("AuthService: не удалось выпустить токены", zap.String("userID", user.ID), zap.Error(err))
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtSvc.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	// Роль берем из БД, а не из токена: она могла измениться.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("AuthService: не удалось обновить токены", zap.String("userID", user.ID), zap.Error(err))
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) Profile(ctx context.Context, actor entities.Actor) (*dto.ProfileDTO, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileDTO{
		ID:          user.ID,
		Fio:         user.Fio,
		Email:       user.Email,
		Role:        string(user.Role),
		CompanyName: user.CompanyName,
	}, nil
}
