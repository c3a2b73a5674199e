package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bondfall/internal/bondlock"
	"bondfall/internal/clock"
	apperrors "bondfall/internal/errors"
	"bondfall/internal/models"
	"bondfall/internal/yield"
)

// distributionService applies incoming revenue to a bond's tranches in
// strict priority order.
type distributionService struct {
	db    *gorm.DB
	clk   clock.Clock
	guard *bondlock.Guard
}

// NewDistributionService creates a new DistributionServicer.
func NewDistributionService(db *gorm.DB, clk clock.Clock, guard *bondlock.Guard) DistributionServicer {
	return &distributionService{db: db, clk: clk, guard: guard}
}

// Distribute applies revenue to a bond's waterfall. Senior is paid toward
// its outstanding yield entitlement first, then mezzanine, then junior.
// Tranches without investment are skipped, a tranche already at its
// entitlement receives nothing, and revenue left after all three is
// recorded as remainder. The full input amount counts toward the bond's
// distribution total regardless of how much reached the tranches.
func (s *distributionService) Distribute(bondID string, amount int64) (*models.RevenueDistribution, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "distribution amount must be greater than zero")
	}

	var record *models.RevenueDistribution
	err := withBondLock(context.Background(), s.guard, bondID, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var bond models.Bond
			if err := tx.First(&bond, "id = ?", bondID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrBondNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			if bond.Status != models.BondStatusActive {
				return apperrors.ErrBondNotActive
			}

			var tranches []models.Tranche
			if err := tx.Where("bond_id = ?", bondID).Order("tranche_index ASC").Find(&tranches).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if len(tranches) != models.TrancheCount {
				return apperrors.ErrTrancheNotFound
			}

			now := s.clk.Now()
			elapsed := now.Unix() - bond.IssuedAt.Unix()

			remaining := amount
			var applied [models.TrancheCount]int64
			for i := range tranches {
				tranche := &tranches[i]
				if tranche.TotalInvested == 0 {
					continue
				}

				expected := yield.Expected(tranche.TotalInvested, tranche.RateBps, elapsed)
				owed := expected - tranche.AccumulatedYield
				if owed <= 0 {
					continue
				}

				toApply := owed
				if toApply > remaining {
					toApply = remaining
				}
				if toApply == 0 {
					continue
				}

				tranche.AccumulatedYield += toApply
				if txErr := tx.Model(tranche).Update("accumulated_yield", tranche.AccumulatedYield).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
				}
				applied[tranche.Index] = toApply
				remaining -= toApply
			}

			bond.TotalRevenueDistributed += amount
			if txErr := tx.Model(&bond).Update("total_revenue_distributed", bond.TotalRevenueDistributed).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			record = &models.RevenueDistribution{
				BondID:           bondID,
				Amount:           amount,
				SeniorApplied:    applied[models.TrancheSenior],
				MezzanineApplied: applied[models.TrancheMezzanine],
				JuniorApplied:    applied[models.TrancheJunior],
				Remainder:        remaining,
				DistributedAt:    now,
			}
			if txErr := tx.Create(record).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}
