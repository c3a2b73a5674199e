package services

import (
	"context"
	"time"

	"bondfall/internal/models"
	"bondfall/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string, role models.UserRole) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AuthorizationContext answers role checks for gated bond operations. The
// engine consults it before issuance and lifecycle transitions; it never
// verifies identity itself.
type AuthorizationContext interface {
	IsAuthorizedIssuer(userID string) bool
	IsAuthorizedAdmin(userID string) bool
}

// IssueBondInput carries the parameters for a bond issuance.
type IssueBondInput struct {
	BondID       string // optional; generated when empty
	AssetRef     string
	TotalValue   int64
	MaturityDate time.Time
	Allocations  *[models.TrancheCount]int64 // optional; default 50/33/remainder split when nil
	RatesBps     [models.TrancheCount]int64
}

// BondServicer defines the contract for bond issuance and queries.
type BondServicer interface {
	IssueBond(issuerID string, in IssueBondInput) (*models.Bond, error)
	GetBond(bondID string) (*models.Bond, error)
	GetTranche(bondID string, trancheIndex int) (*models.Tranche, error)
	ListBonds(page pagination.PageRequest, status *models.BondStatus) (*pagination.PageResponse[models.Bond], error)
	ListDistributions(bondID string, page pagination.PageRequest) (*pagination.PageResponse[models.RevenueDistribution], error)
}

// InvestmentServicer defines the contract for tranche investment.
type InvestmentServicer interface {
	Invest(investorID, bondID string, trancheIndex int, amount int64) (*models.Investment, error)
	GetInvestorPositions(investorID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
}

// DistributionServicer applies revenue to a bond's waterfall.
type DistributionServicer interface {
	Distribute(bondID string, amount int64) (*models.RevenueDistribution, error)
}

// RedemptionServicer settles matured positions through the external ledger.
type RedemptionServicer interface {
	Redeem(ctx context.Context, investorID, bondID string, trancheIndex int) (*models.Redemption, error)
}

// LifecycleServicer performs bond state transitions.
type LifecycleServicer interface {
	MatureBond(actorID, bondID string) (*models.Bond, error)
	DefaultBond(actorID, bondID string) (*models.Bond, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
