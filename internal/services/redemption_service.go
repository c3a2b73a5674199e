package services

import (
	"context"
	"errors"
	"math/big"

	"gorm.io/gorm"

	"bondfall/internal/bondlock"
	"bondfall/internal/clock"
	apperrors "bondfall/internal/errors"
	"bondfall/internal/ledger"
	"bondfall/internal/models"
	"bondfall/internal/yield"
)

// redemptionService settles matured positions through the external ledger.
type redemptionService struct {
	db     *gorm.DB
	clk    clock.Clock
	guard  *bondlock.Guard
	ledger ledger.Ledger
}

// NewRedemptionService creates a new RedemptionServicer.
func NewRedemptionService(db *gorm.DB, clk clock.Clock, guard *bondlock.Guard, lg ledger.Ledger) RedemptionServicer {
	return &redemptionService{db: db, clk: clk, guard: guard, ledger: lg}
}

// yieldShare returns the investor's proportional share of the tranche's
// accumulated yield: accumulatedYield * principal / totalInvested, truncated.
func yieldShare(accumulatedYield, principal, totalInvested int64) int64 {
	if totalInvested <= 0 {
		return 0
	}
	share := new(big.Int).Mul(big.NewInt(accumulatedYield), big.NewInt(principal))
	share.Quo(share, big.NewInt(totalInvested))
	return share.Int64()
}

// Redeem pays out an investor's full position in a matured bond tranche:
// principal plus realized yield, capped at the position's expected yield to
// maturity. The balance is zeroed and the ledger transfer committed as one
// unit; a failed transfer rolls everything back.
func (s *redemptionService) Redeem(ctx context.Context, investorID, bondID string, trancheIndex int) (*models.Redemption, error) {
	if !models.ValidTrancheIndex(trancheIndex) {
		return nil, apperrors.ErrTrancheNotFound
	}

	var redemption *models.Redemption
	err := withBondLock(ctx, s.guard, bondID, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			var bond models.Bond
			if err := tx.First(&bond, "id = ?", bondID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrBondNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			now := s.clk.Now()
			if bond.Status != models.BondStatusMatured && now.Before(bond.MaturityDate) {
				return apperrors.ErrBondNotMatured
			}

			var tranche models.Tranche
			if err := tx.Where("bond_id = ? AND tranche_index = ?", bondID, trancheIndex).First(&tranche).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrTrancheNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			var investment models.Investment
			err := tx.Where("bond_id = ? AND tranche_index = ? AND investor_id = ?",
				bondID, trancheIndex, investorID).First(&investment).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrNoInvestment
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if investment.Principal <= 0 {
				return apperrors.ErrNoInvestment
			}

			principal := investment.Principal
			maturityElapsed := bond.MaturityDate.Unix() - bond.IssuedAt.Unix()
			expectedAtMaturity := yield.Expected(principal, tranche.RateBps, maturityElapsed)

			actualYield := yieldShare(tranche.AccumulatedYield, principal, tranche.TotalInvested)
			if actualYield > expectedAtMaturity {
				actualYield = expectedAtMaturity
			}
			payout := principal + actualYield

			if txErr := tx.Model(&investment).Update("principal", 0).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			tranche.TotalRedeemed += payout
			if txErr := tx.Model(&tranche).Update("total_redeemed", tranche.TotalRedeemed).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			redemption = &models.Redemption{
				BondID:       bondID,
				TrancheIndex: trancheIndex,
				InvestorID:   investorID,
				Principal:    principal,
				Yield:        actualYield,
				Payout:       payout,
				RedeemedAt:   now,
			}
			if txErr := tx.Create(redemption).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			// The transfer gates the commit: if the ledger cannot pay,
			// the zeroed balance rolls back with everything else.
			if transferErr := s.ledger.Transfer(ctx, investorID, payout); transferErr != nil {
				return apperrors.Wrap(apperrors.ErrTransferFailed, transferErr)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}
