package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleChef  UserRole = "chef"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleChef, RoleAdmin:
		return true
	}
	return false
}

// Elevated reports whether r can be the target of a role request
func (r UserRole) Elevated() bool {
	return r == RoleChef || r == RoleAdmin
}

type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	UID       string    `json:"uid"`
	Role      UserRole  `json:"role" gorm:"not null;default:'user'"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the verified caller produced once by the identity gate
type Identity struct {
	Email string
	Role  UserRole
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
