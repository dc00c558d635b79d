package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a member of the finance office
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"uniqueIndex;not null" json:"username"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string     `gorm:"not null" json:"full_name"`
	Rank              string     `json:"rank"`
	Unit              string     `json:"unit"`
	Role              string     `gorm:"default:finance_officer;index" json:"role"`
	Status            string     `gorm:"default:active" json:"status"`
	Phone             string     `json:"phone"`
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleFinanceOfficer
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsCommander returns true if user has the commander role
func (u *User) IsCommander() bool {
	return u.Role == RoleCommander
}

// IsFinanceOfficer returns true if user has the finance officer role
func (u *User) IsFinanceOfficer() bool {
	return u.Role == RoleFinanceOfficer
}

// IsAuditor returns true if user has the read-only auditor role
func (u *User) IsAuditor() bool {
	return u.Role == RoleAuditor
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// IsDiscarded returns true if user is soft-deleted
func (u *User) IsDiscarded() bool {
	return u.DiscardedAt != nil
}

// Role constants
const (
	RoleFinanceOfficer = "finance_officer"
	RoleCommander      = "commander"
	RoleAuditor        = "auditor"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// ValidRoles returns the assignable user roles
func ValidRoles() []string {
	return []string{RoleFinanceOfficer, RoleCommander, RoleAuditor}
}

// IsValidRole returns true if role is assignable
func IsValidRole(role string) bool {
	switch role {
	case RoleFinanceOfficer, RoleCommander, RoleAuditor:
		return true
	}
	return false
}

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Rank      string    `json:"rank"`
	Unit      string    `json:"unit"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Rank:      u.Rank,
		Unit:      u.Unit,
		Role:      u.Role,
		Status:    u.Status,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
