package dto

import "time"

// UserDTO 는 관리자 사용자 목록 응답 스키마이다. 비밀번호 해시는 포함하지 않는다.
type UserDTO struct {
	ID        string    `json:"id" example:"665f1c2e9b1e8a3d4c5b6a70"`
	Name      string    `json:"name" example:"Jane Admin"`
	Email     string    `json:"email" example:"admin@example.com"`
	Role      string    `json:"role" example:"admin"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
