package services

import (
	"context"
	"fmt"

	"blog-ingest/cmd/api/dto"
	"blog-ingest/models"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// ListUsers 는 관리자 화면용 사용자 목록을 반환한다. 비밀번호 해시는 포함하지 않는다.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, mapUser(u))
	}
	return out, nil
}

func mapUser(u models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		Image:     u.Image,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
