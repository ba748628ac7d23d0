package domain

import "time"

type UserRole string

const (
	RoleVisitor UserRole = "visitor"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleVisitor, RoleStaff, RoleAdmin:
		return UserRole(s), true
	}
	return "", false
}

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255" validate:"required,email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         UserRole  `json:"role" gorm:"size:16"`
	Language     string    `json:"language,omitempty" gorm:"size:8"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeen     time.Time `json:"last_seen"`
}
