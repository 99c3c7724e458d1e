package service

import (
	"context"

	"blogger-auth/internal/dto"
)

type AuthService interface {
	Login(ctx context.Context, r dto.LoginRequest, ip, title string) (*dto.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, ip, title string) (*dto.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*dto.MeResponse, error)
}
