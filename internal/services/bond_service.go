package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bondfall/internal/clock"
	apperrors "bondfall/internal/errors"
	"bondfall/internal/models"
	"bondfall/internal/pagination"
)

// bondService handles bond issuance and queries.
type bondService struct {
	db      *gorm.DB
	clk     clock.Clock
	authCtx AuthorizationContext
}

// NewBondService creates a new BondServicer.
func NewBondService(db *gorm.DB, clk clock.Clock, authCtx AuthorizationContext) BondServicer {
	return &bondService{db: db, clk: clk, authCtx: authCtx}
}

// defaultSplit returns the 50%/33%/remainder tranche allocation for a total
// value. The junior tranche absorbs integer-division remainders so the three
// caps always sum to exactly totalValue.
func defaultSplit(totalValue int64) [models.TrancheCount]int64 {
	senior := totalValue * 50 / 100
	mezzanine := totalValue * 33 / 100
	return [models.TrancheCount]int64{senior, mezzanine, totalValue - senior - mezzanine}
}

// IssueBond validates and creates a bond with its three tranches atomically.
func (s *bondService) IssueBond(issuerID string, in IssueBondInput) (*models.Bond, error) {
	if !s.authCtx.IsAuthorizedIssuer(issuerID) {
		return nil, apperrors.ErrForbidden
	}

	if in.TotalValue <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total value must be greater than zero")
	}

	now := s.clk.Now()
	if !in.MaturityDate.After(now) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "maturity date must be in the future")
	}

	for i, rate := range in.RatesBps {
		if rate < 0 || rate > 10000 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("%s rate must be between 0 and 10000 basis points", models.TrancheNames[i]))
		}
	}

	allocations := defaultSplit(in.TotalValue)
	if in.Allocations != nil {
		allocations = *in.Allocations
		var sum int64
		for i, alloc := range allocations {
			if alloc < 0 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
					fmt.Sprintf("%s allocation must not be negative", models.TrancheNames[i]))
			}
			sum += alloc
		}
		if sum != in.TotalValue {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tranche allocations must sum to the total value")
		}
	}

	bond := &models.Bond{
		Base:         models.Base{ID: in.BondID},
		IssuerID:     issuerID,
		AssetRef:     in.AssetRef,
		TotalValue:   in.TotalValue,
		MaturityDate: in.MaturityDate,
		IssuedAt:     now,
		Status:       models.BondStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.BondID != "" {
			var count int64
			if txErr := tx.Model(&models.Bond{}).Where("id = ?", in.BondID).Count(&count).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			if count > 0 {
				return apperrors.ErrDuplicateBond
			}
		}

		if txErr := tx.Create(bond).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		for i := 0; i < models.TrancheCount; i++ {
			tranche := &models.Tranche{
				BondID:        bond.ID,
				Index:         i,
				Name:          models.TrancheNames[i],
				AllocationCap: allocations[i],
				RateBps:       in.RatesBps[i],
			}
			if txErr := tx.Create(tranche).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			bond.Tranches = append(bond.Tranches, *tranche)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return bond, nil
}

// GetBond returns a bond with its tranches ordered Senior first.
func (s *bondService) GetBond(bondID string) (*models.Bond, error) {
	var bond models.Bond
	err := s.db.Preload("Tranches", func(db *gorm.DB) *gorm.DB {
		return db.Order("tranche_index ASC")
	}).First(&bond, "id = ?", bondID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBondNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bond, nil
}

// GetTranche returns one tranche of a bond by validated index.
func (s *bondService) GetTranche(bondID string, trancheIndex int) (*models.Tranche, error) {
	if !models.ValidTrancheIndex(trancheIndex) {
		return nil, apperrors.ErrTrancheNotFound
	}

	var tranche models.Tranche
	err := s.db.Where("bond_id = ? AND tranche_index = ?", bondID, trancheIndex).First(&tranche).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Distinguish a missing bond from a missing tranche.
			var count int64
			if cntErr := s.db.Model(&models.Bond{}).Where("id = ?", bondID).Count(&count).Error; cntErr == nil && count == 0 {
				return nil, apperrors.ErrBondNotFound
			}
			return nil, apperrors.ErrTrancheNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tranche, nil
}

// ListBonds returns a paginated list of bonds, optionally filtered by status.
func (s *bondService) ListBonds(page pagination.PageRequest, status *models.BondStatus) (*pagination.PageResponse[models.Bond], error) {
	page.Defaults()

	filter := func(db *gorm.DB) *gorm.DB {
		if status != nil {
			return db.Where("status = ?", *status)
		}
		return db
	}

	var totalItems int64
	if err := filter(s.db.Model(&models.Bond{})).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var bonds []models.Bond
	if err := filter(s.db.Preload("Tranches", func(db *gorm.DB) *gorm.DB {
		return db.Order("tranche_index ASC")
	})).Order("issued_at DESC").Scopes(pagination.Paginate(page)).Find(&bonds).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(bonds, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListDistributions returns a bond's revenue distribution history, most
// recent first.
func (s *bondService) ListDistributions(bondID string, page pagination.PageRequest) (*pagination.PageResponse[models.RevenueDistribution], error) {
	if _, err := s.GetBond(bondID); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.RevenueDistribution{}).Where("bond_id = ?", bondID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var distributions []models.RevenueDistribution
	if err := s.db.Where("bond_id = ?", bondID).Order("distributed_at DESC").
		Scopes(pagination.Paginate(page)).Find(&distributions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(distributions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
