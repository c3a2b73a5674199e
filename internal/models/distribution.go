package models

import "time"

// RevenueDistribution records one revenue feed event applied to a bond's
// waterfall. Applied amounts are broken out per tranche in priority order;
// Remainder is revenue left after every tranche reached its time-weighted
// entitlement. The remainder has no further destination in this engine; it
// is retained in the bond's TotalRevenueDistributed bookkeeping only.
type RevenueDistribution struct {
	Base
	BondID           string    `gorm:"type:uuid;not null;index" json:"bond_id"`
	Amount           int64     `gorm:"type:bigint;not null" json:"amount"`
	SeniorApplied    int64     `gorm:"type:bigint;not null;default:0" json:"senior_applied"`
	MezzanineApplied int64     `gorm:"type:bigint;not null;default:0" json:"mezzanine_applied"`
	JuniorApplied    int64     `gorm:"type:bigint;not null;default:0" json:"junior_applied"`
	Remainder        int64     `gorm:"type:bigint;not null;default:0" json:"remainder"`
	DistributedAt    time.Time `gorm:"not null" json:"distributed_at"`
}
