package models

import (
	"time"
)

type UserRole string

const (
	RoleOwner   UserRole = "OWNER"
	RoleManager UserRole = "MANAGER"
	RoleAdmin   UserRole = "ADMIN"
	RoleStaff   UserRole = "STAFF"
	RoleCashier UserRole = "CASHIER"
)

var AllUserRoles = []UserRole{RoleOwner, RoleManager, RoleAdmin, RoleStaff, RoleCashier}

func (r UserRole) IsValid() bool {
	for _, role := range AllUserRoles {
		if role == r {
			return true
		}
	}
	return false
}

// IsSupervisor reports whether the role may administer training content and
// review learner work.
func (r UserRole) IsSupervisor() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// CanLinkPayments reports whether the role may attach payments to activities.
// OWNER does not qualify.
func (r UserRole) CanLinkPayments() bool {
	return r == RoleAdmin || r == RoleManager
}

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null;size:150"`
	FullName     string     `json:"full_name" gorm:"size:150"`
	Email        string     `json:"email" gorm:"size:255;index"`
	Role         UserRole   `json:"role" gorm:"size:20;not null;index"`
	PasswordHash string     `json:"-" gorm:"size:255"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName returns the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
