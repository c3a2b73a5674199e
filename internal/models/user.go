package models

import "time"

// UserRole controls which bond operations a user may perform.
type UserRole string

const (
	RoleInvestor UserRole = "investor"
	RoleIssuer   UserRole = "issuer"
	RoleAdmin    UserRole = "admin"
)

// User represents the user model in the database
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Role                UserRole   `gorm:"not null;default:'investor'" json:"role"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Investments []Investment `gorm:"foreignKey:InvestorID" json:"investments,omitempty"`
	IssuedBonds []Bond       `gorm:"foreignKey:IssuerID" json:"issued_bonds,omitempty"`
}
