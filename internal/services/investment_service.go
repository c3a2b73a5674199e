package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bondfall/internal/bondlock"
	"bondfall/internal/clock"
	apperrors "bondfall/internal/errors"
	"bondfall/internal/models"
	"bondfall/internal/pagination"
)

// investmentService handles tranche investments.
type investmentService struct {
	db    *gorm.DB
	clk   clock.Clock
	guard *bondlock.Guard
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, clk clock.Clock, guard *bondlock.Guard) InvestmentServicer {
	return &investmentService{db: db, clk: clk, guard: guard}
}

// Invest places funds into a bond tranche. Repeat investments by the same
// investor accumulate onto a single position. The tranche's allocation cap
// is checked under the bond's lock so concurrent investments cannot
// oversubscribe it.
func (s *investmentService) Invest(investorID, bondID string, trancheIndex int, amount int64) (*models.Investment, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investment amount must be greater than zero")
	}
	if !models.ValidTrancheIndex(trancheIndex) {
		return nil, apperrors.ErrTrancheNotFound
	}

	var investment *models.Investment
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
			// Investment closes at maturity even before the status transition.
			if !s.clk.Now().Before(bond.MaturityDate) {
				return apperrors.ErrBondMatured
			}

			var tranche models.Tranche
			if err := tx.Where("bond_id = ? AND tranche_index = ?", bondID, trancheIndex).First(&tranche).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrTrancheNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			if amount > tranche.Remaining() {
				return apperrors.WithMessage(apperrors.ErrAllocationExceeded,
					"investment exceeds the tranche's remaining allocation")
			}

			var existing models.Investment
			err := tx.Where("bond_id = ? AND tranche_index = ? AND investor_id = ?",
				bondID, trancheIndex, investorID).First(&existing).Error
			switch {
			case err == nil:
				existing.Principal += amount
				if txErr := tx.Model(&existing).Update("principal", existing.Principal).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
				}
				investment = &existing
			case errors.Is(err, gorm.ErrRecordNotFound):
				created := models.Investment{
					BondID:       bondID,
					TrancheIndex: trancheIndex,
					InvestorID:   investorID,
					Principal:    amount,
				}
				if txErr := tx.Create(&created).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
				}
				investment = &created
			default:
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			tranche.TotalInvested += amount
			if txErr := tx.Model(&tranche).Update("total_invested", tranche.TotalInvested).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

// GetInvestorPositions returns an investor's positions across all bonds,
// newest first.
func (s *investmentService) GetInvestorPositions(investorID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Investment{}).Where("investor_id = ?", investorID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var positions []models.Investment
	if err := s.db.Where("investor_id = ?", investorID).Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&positions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(positions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
