package dto

import (
	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/database/models"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"max=255"`
}

func (r CreateUserRequest) Validate() map[string]string {
	return validation.Struct(r)
}

type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r TokenRequest) Validate() map[string]string {
	return validation.Struct(r)
}

// UpdateUserRequest is the body of PATCH and PUT /api/user/me/. Email is
// not changeable here.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,password"`
}

// Validate checks the fields present. With full set every field is required.
func (r UpdateUserRequest) Validate(full bool) map[string]string {
	errors := validation.Struct(r)
	if full {
		if r.Name == nil {
			errors["name"] = "This field is required"
		}
		if r.Password == nil {
			errors["password"] = "This field is required"
		}
	}
	return errors
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}
