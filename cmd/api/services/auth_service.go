package services

import (
	"context"
	"errors"
	"fmt"

	"blog-ingest/cmd/api/auth"
	"blog-ingest/cmd/api/dto"
	"blog-ingest/models"
	"blog-ingest/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore 는 인증/사용자 조회에 필요한 저장소 기능이다. repositories.UserRepository 가 구현한다.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type AuthService struct {
	users      UserStore
	jwtManager *auth.JWTManager
}

func NewAuthService(users UserStore, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwtManager: jwtManager}
}

func NewAuthServiceFromEnv(users UserStore) (*AuthService, error) {
	jwtManager, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to init JWTManager: %w", err)
	}
	return NewAuthService(users, jwtManager), nil
}

// Login 은 이메일/비밀번호를 검증하고 액세스 토큰을 발급한다.
// 존재하지 않는 이메일과 잘못된 비밀번호는 같은 에러로 취급한다.
func (s *AuthService) Login(ctx context.Context, email, password string) (dto.LoginResponseDTO, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return dto.LoginResponseDTO{}, ErrInvalidCredentials
		}
		return dto.LoginResponseDTO{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return dto.LoginResponseDTO{}, ErrInvalidCredentials
	}

	token, err := s.jwtManager.Sign(auth.Identity{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return dto.LoginResponseDTO{}, fmt.Errorf("jwt sign: %w", err)
	}
	return dto.LoginResponseDTO{Token: token, User: mapUser(*u)}, nil
}

func (s *AuthService) ParseAccessToken(token string) (auth.Identity, error) {
	return s.jwtManager.Parse(token)
}
