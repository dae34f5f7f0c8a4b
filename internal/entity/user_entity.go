package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      string
	Status    string
	AvatarURL *string
	CreatedAt time.Time
}

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"

	StatusActive = "active"
)

// IsStaff reports whether this identity carries the staff capability.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
