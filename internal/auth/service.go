package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugh/recipe-api/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired      = errors.New("users must have an email address")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db  *gorm.DB
	jwt *JWTService
}

func NewService(db *gorm.DB, jwt *JWTService) *Service {
	return &Service{db: db, jwt: jwt}
}

// UserOption customizes a user before it is inserted.
type UserOption func(*models.User)

func WithName(name string) UserOption {
	return func(u *models.User) { u.Name = name }
}

func withSuperuser() UserOption {
	return func(u *models.User) {
		u.IsStaff = true
		u.IsSuperuser = true
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type UpdateUserInput struct {
	Name     *string
	Password *string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateUser inserts a regular user. The email is normalized and the password
// hashed. An empty password leaves the account without a usable password.
func (s *Service) CreateUser(ctx context.Context, email, password string, opts ...UserOption) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	var hash string
	if password != "" {
		if hash, err = HashPassword(password); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(&user)
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// CreateSuperuser is CreateUser with staff and superuser flags set.
func (s *Service) CreateSuperuser(ctx context.Context, email, password string, opts ...UserOption) (*models.User, error) {
	return s.CreateUser(ctx, email, password, append(opts, withSuperuser())...)
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	return s.CreateUser(ctx, input.Email, input.Password, WithName(input.Name))
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes the name and/or password of an account. Nil fields are left alone.
func (s *Service) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Password != nil {
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("updating user: %w", err)
		}
	}

	return s.GetUserByID(ctx, id)
}
