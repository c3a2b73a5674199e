package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bondfall/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an investor user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleInvestor)
}

// CreateTestUserWithRole creates a user with the given role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// BondFixture controls the shape of a test bond. Zero values fall back to
// a 10000-value bond maturing one year after issuance with the standard
// three-way split.
type BondFixture struct {
	IssuerID    string
	TotalValue  int64
	IssuedAt    time.Time
	Maturity    time.Time
	Status      models.BondStatus
	Allocations [models.TrancheCount]int64
	RatesBps    [models.TrancheCount]int64
}

// CreateTestBond creates a bond with three tranches directly in the database.
func CreateTestBond(t *testing.T, db *gorm.DB, fixture BondFixture) *models.Bond {
	t.Helper()

	if fixture.TotalValue == 0 {
		fixture.TotalValue = 10000
	}
	if fixture.IssuedAt.IsZero() {
		fixture.IssuedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if fixture.Maturity.IsZero() {
		fixture.Maturity = fixture.IssuedAt.AddDate(1, 0, 0)
	}
	if fixture.Status == "" {
		fixture.Status = models.BondStatusActive
	}
	if fixture.Allocations == ([models.TrancheCount]int64{}) {
		fixture.Allocations = [models.TrancheCount]int64{5000, 3300, 1700}
	}
	if fixture.RatesBps == ([models.TrancheCount]int64{}) {
		fixture.RatesBps = [models.TrancheCount]int64{500, 1000, 2000}
	}

	bond := &models.Bond{
		IssuerID:     fixture.IssuerID,
		AssetRef:     fmt.Sprintf("asset-%d", nextID()),
		TotalValue:   fixture.TotalValue,
		MaturityDate: fixture.Maturity,
		IssuedAt:     fixture.IssuedAt,
		Status:       fixture.Status,
	}
	if err := db.Create(bond).Error; err != nil {
		t.Fatalf("failed to create test bond: %v", err)
	}

	for i := 0; i < models.TrancheCount; i++ {
		tranche := models.Tranche{
			BondID:        bond.ID,
			Index:         i,
			Name:          models.TrancheNames[i],
			AllocationCap: fixture.Allocations[i],
			RateBps:       fixture.RatesBps[i],
		}
		if err := db.Create(&tranche).Error; err != nil {
			t.Fatalf("failed to create test tranche: %v", err)
		}
		bond.Tranches = append(bond.Tranches, tranche)
	}

	return bond
}

// CreateTestInvestment records a position and bumps the tranche's invested
// total, bypassing the service layer.
func CreateTestInvestment(t *testing.T, db *gorm.DB, bondID string, trancheIndex int, investorID string, principal int64) *models.Investment {
	t.Helper()

	investment := &models.Investment{
		BondID:       bondID,
		TrancheIndex: trancheIndex,
		InvestorID:   investorID,
		Principal:    principal,
	}
	if err := db.Create(investment).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}

	if err := db.Model(&models.Tranche{}).
		Where("bond_id = ? AND tranche_index = ?", bondID, trancheIndex).
		Update("total_invested", gorm.Expr("total_invested + ?", principal)).Error; err != nil {
		t.Fatalf("failed to update test tranche total: %v", err)
	}

	return investment
}

// GetTranche reloads one tranche of a bond.
func GetTranche(t *testing.T, db *gorm.DB, bondID string, trancheIndex int) *models.Tranche {
	t.Helper()

	var tranche models.Tranche
	if err := db.Where("bond_id = ? AND tranche_index = ?", bondID, trancheIndex).First(&tranche).Error; err != nil {
		t.Fatalf("failed to load test tranche: %v", err)
	}
	return &tranche
}
