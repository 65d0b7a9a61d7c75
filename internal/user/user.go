package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	RoleID       *int64    `json:"-" gorm:"column:role_id"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`

	RoleName string `json:"role" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

type UpdateUserDTO struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type ListFilter struct {
	Search   string
	Page     int
	PageSize int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type ListResult struct {
	Data       []*User    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
