package user

import (
	"time"

	"process-platform/internal/query"
)

const DefaultAvatar = "/professional-avatar.png"

// User represents a user in the system
type User struct {
	ID           int64 `gorm:"primaryKey"`
	Name         string
	Email        string
	Role         string
	PasswordHash *string
	Avatar       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Role        string    `json:"role" db:"role"`
	Avatar      string    `json:"avatar" db:"avatar"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	HasPassword bool      `json:"has_password" db:"has_password"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Avatar:      u.Avatar,
		IsActive:    u.IsActive,
		HasPassword: u.PasswordHash != nil && *u.PasswordHash != "",
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type ListFilter struct {
	Role            query.Opt
	Search          query.Opt
	IncludeInactive bool
	Limit           uint64
	Offset          uint64
}

// Profile is the editable field set. Updates overwrite all of it.
type Profile struct {
	Name   string
	Email  string
	Role   string
	Avatar string
}

type CreateInput struct {
	Profile
	Password string
}

type InviteInput struct {
	Name  string
	Email string
	Role  string
}

// Invitation is what an admin gets back after inviting someone.
type Invitation struct {
	User      SafeUser  `json:"user"`
	Link      string    `json:"invitationLink"`
	ExpiresAt time.Time `json:"expiresAt"`
}
