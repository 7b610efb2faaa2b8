package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a principal that signs in with email and password and holds exactly one role
type User struct {
	ID             string    `json:"id" db:"id"`
	RoleID         string    `json:"roleId" db:"role_id"`
	UserName       string    `json:"userName" db:"user_name"`
	Email          string    `json:"email" db:"email"`
	Fullname       string    `json:"fullname" db:"fullname"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Active         bool      `json:"active" db:"active"`
	EmailConfirmed bool      `json:"emailConfirmed" db:"email_confirmed"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates an active User whose user name is its email
func NewUser(email, fullname, passwordHash, roleID string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		RoleID:       roleID,
		UserName:     email,
		Email:        email,
		Fullname:     fullname,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
