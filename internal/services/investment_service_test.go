package services

import (
	"testing"

	"bondfall/internal/bondlock"
	"bondfall/internal/models"
	"bondfall/internal/pagination"
	"bondfall/internal/testutil"
)

func TestInvest(t *testing.T) {
	t.Run("creates_position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		inv, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 3000)
		testutil.AssertNoError(t, err)
		if inv.Principal != 3000 {
			t.Errorf("expected principal 3000, got %d", inv.Principal)
		}

		senior := testutil.GetTranche(t, db, bond.ID, models.TrancheSenior)
		if senior.TotalInvested != 3000 {
			t.Errorf("expected total invested 3000, got %d", senior.TotalInvested)
		}
	})

	t.Run("accumulates_onto_existing_position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		_, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 2000)
		testutil.AssertNoError(t, err)
		inv, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 1500)
		testutil.AssertNoError(t, err)

		if inv.Principal != 3500 {
			t.Errorf("expected accumulated principal 3500, got %d", inv.Principal)
		}

		var count int64
		db.Model(&models.Investment{}).
			Where("bond_id = ? AND investor_id = ?", bond.ID, investor.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected a single position row, got %d", count)
		}
	})

	t.Run("rejects_cap_breach", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		_, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 5001)
		testutil.AssertAppError(t, err, "ALLOCATION_EXCEEDED")

		senior := testutil.GetTranche(t, db, bond.ID, models.TrancheSenior)
		if senior.TotalInvested != 0 {
			t.Errorf("tranche state changed on rejected investment: %d", senior.TotalInvested)
		}
	})

	t.Run("cap_breach_counts_existing_positions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		first := testutil.CreateTestUser(t, db)
		second := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		_, err := svc.Invest(first.ID, bond.ID, models.TrancheSenior, 4000)
		testutil.AssertNoError(t, err)
		_, err = svc.Invest(second.ID, bond.ID, models.TrancheSenior, 1001)
		testutil.AssertAppError(t, err, "ALLOCATION_EXCEEDED")
		_, err = svc.Invest(second.ID, bond.ID, models.TrancheSenior, 1000)
		testutil.AssertNoError(t, err)
	})

	t.Run("exactly_at_cap", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		_, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 5000)
		testutil.AssertNoError(t, err)
	})

	t.Run("rejects_after_maturity_while_still_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		clk := testutil.NewFakeClock(testEpoch)
		svc := NewInvestmentService(db, clk, bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		clk.Set(bond.MaturityDate)
		_, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 1000)
		testutil.AssertAppError(t, err, "BOND_MATURED")
	})

	t.Run("rejects_non_active_bond", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		bond := testutil.CreateTestBond(t, db, testutil.BondFixture{
			IssuerID: issuer.ID,
			IssuedAt: testEpoch,
			Status:   models.BondStatusDefaulted,
		})

		_, err := svc.Invest(investor.ID, bond.ID, models.TrancheSenior, 1000)
		testutil.AssertAppError(t, err, "BOND_NOT_ACTIVE")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())

		_, err := svc.Invest("whoever", "whatever", models.TrancheSenior, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_tranche_index", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())

		_, err := svc.Invest("whoever", "whatever", -1, 1000)
		testutil.AssertAppError(t, err, "TRANCHE_NOT_FOUND")
	})

	t.Run("missing_bond", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		investor := testutil.CreateTestUser(t, db)

		_, err := svc.Invest(investor.ID, "missing", models.TrancheSenior, 1000)
		testutil.AssertAppError(t, err, "BOND_NOT_FOUND")
	})
}

func TestGetInvestorPositions(t *testing.T) {
	t.Run("lists_positions_across_bonds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())
		issuer := testutil.CreateTestUserWithRole(t, db, models.RoleIssuer)
		investor := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})
		second := testutil.CreateTestBond(t, db, testutil.BondFixture{IssuerID: issuer.ID, IssuedAt: testEpoch})

		_, err := svc.Invest(investor.ID, first.ID, models.TrancheSenior, 1000)
		testutil.AssertNoError(t, err)
		_, err = svc.Invest(investor.ID, second.ID, models.TrancheJunior, 500)
		testutil.AssertNoError(t, err)
		_, err = svc.Invest(other.ID, first.ID, models.TrancheSenior, 700)
		testutil.AssertNoError(t, err)

		page, err := svc.GetInvestorPositions(investor.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 positions, got %d", page.TotalItems)
		}
		for _, position := range page.Data {
			if position.InvestorID != investor.ID {
				t.Errorf("position belongs to %s", position.InvestorID)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInvestmentService(db, testutil.NewFakeClock(testEpoch), bondlock.NewGuard())

		page, err := svc.GetInvestorPositions("nobody", pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 0 {
			t.Errorf("expected no positions, got %d", len(page.Data))
		}
	})
}
