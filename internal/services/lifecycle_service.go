package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bondfall/internal/bondlock"
	"bondfall/internal/clock"
	apperrors "bondfall/internal/errors"
	"bondfall/internal/models"
)

// lifecycleService performs bond state transitions. Matured and Defaulted
// are terminal.
type lifecycleService struct {
	db      *gorm.DB
	clk     clock.Clock
	guard   *bondlock.Guard
	authCtx AuthorizationContext
}

// NewLifecycleService creates a new LifecycleServicer.
func NewLifecycleService(db *gorm.DB, clk clock.Clock, guard *bondlock.Guard, authCtx AuthorizationContext) LifecycleServicer {
	return &lifecycleService{db: db, clk: clk, guard: guard, authCtx: authCtx}
}

func (s *lifecycleService) transition(actorID, bondID string, to models.BondStatus, allowed func(bond *models.Bond) error) (*models.Bond, error) {
	var bond models.Bond
	err := withBondLock(context.Background(), s.guard, bondID, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&bond, "id = ?", bondID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrBondNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			if err := allowed(&bond); err != nil {
				return err
			}

			if bond.Status != models.BondStatusActive {
				return apperrors.ErrBondNotActive
			}

			bond.Status = to
			if txErr := tx.Model(&bond).Update("status", to).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &bond, nil
}

// MatureBond transitions an active bond to Matured once its maturity date
// has passed. The bond's issuer or an admin may perform it.
func (s *lifecycleService) MatureBond(actorID, bondID string) (*models.Bond, error) {
	return s.transition(actorID, bondID, models.BondStatusMatured, func(bond *models.Bond) error {
		if bond.IssuerID != actorID && !s.authCtx.IsAuthorizedAdmin(actorID) {
			return apperrors.ErrForbidden
		}
		if s.clk.Now().Before(bond.MaturityDate) {
			return apperrors.ErrBondNotMatured
		}
		return nil
	})
}

// DefaultBond transitions an active bond to Defaulted. Admin only, allowed
// at any time while the bond is active.
func (s *lifecycleService) DefaultBond(actorID, bondID string) (*models.Bond, error) {
	return s.transition(actorID, bondID, models.BondStatusDefaulted, func(bond *models.Bond) error {
		if !s.authCtx.IsAuthorizedAdmin(actorID) {
			return apperrors.ErrForbidden
		}
		return nil
	})
}
