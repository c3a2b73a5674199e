package services

import (
	"gorm.io/gorm"

	"bondfall/internal/models"
)

// roleAuthorization is an AuthorizationContext backed by the users table.
// Admins are authorized for everything an issuer is.
type roleAuthorization struct {
	db *gorm.DB
}

// NewRoleAuthorization creates an AuthorizationContext reading user roles
// from the database.
func NewRoleAuthorization(db *gorm.DB) AuthorizationContext {
	return &roleAuthorization{db: db}
}

func (a *roleAuthorization) role(userID string) (models.UserRole, bool) {
	var user models.User
	if err := a.db.Select("role", "is_active").First(&user, "id = ?", userID).Error; err != nil {
		return "", false
	}
	if !user.IsActive {
		return "", false
	}
	return user.Role, true
}

func (a *roleAuthorization) IsAuthorizedIssuer(userID string) bool {
	role, ok := a.role(userID)
	return ok && (role == models.RoleIssuer || role == models.RoleAdmin)
}

func (a *roleAuthorization) IsAuthorizedAdmin(userID string) bool {
	role, ok := a.role(userID)
	return ok && role == models.RoleAdmin
}
