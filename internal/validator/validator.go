// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bondfall/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tranche_index", validateTrancheIndex)
		_ = v.RegisterValidation("bond_status", validateBondStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("rate_bps", validateRateBps)
	}
}

func validateTrancheIndex(fl validator.FieldLevel) bool {
	return models.ValidTrancheIndex(int(fl.Field().Int()))
}

func validateBondStatus(fl validator.FieldLevel) bool {
	switch models.BondStatus(fl.Field().String()) {
	case models.BondStatusActive, models.BondStatusMatured, models.BondStatusDefaulted:
		return true
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleInvestor, models.RoleIssuer, models.RoleAdmin:
		return true
	}
	return false
}

// rate_bps bounds annual rates to [0, 10000] basis points.
func validateRateBps(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v <= 10000
}
