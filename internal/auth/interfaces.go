package auth

import (
	"context"

	"github.com/hugh/recipe-api/internal/database/models"
)

// Authenticator defines the interface for user account operations.
type Authenticator interface {
	CreateUser(ctx context.Context, email, password string, opts ...UserOption) (*models.User, error)
	CreateSuperuser(ctx context.Context, email, password string, opts ...UserOption) (*models.User, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error)
}

// UserGetter looks up accounts by id.
type UserGetter interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ UserGetter    = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
