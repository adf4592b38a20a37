package models

import "golang.org/x/crypto/bcrypt"

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool   `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool   `gorm:"not null;default:false" json:"is_superuser"`
}

func (User) TableName() string {
	return "users"
}

func (u User) String() string {
	return u.Email
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}
