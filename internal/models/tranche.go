package models

// TrancheCount is the fixed number of tranches per bond.
const TrancheCount = 3

// Tranche indices in strict payout priority order.
const (
	TrancheSenior    = 0
	TrancheMezzanine = 1
	TrancheJunior    = 2
)

// TrancheNames maps tranche index to display name.
var TrancheNames = [TrancheCount]string{"Senior", "Mezzanine", "Junior"}

// ValidTrancheIndex reports whether index identifies one of the three tranches.
func ValidTrancheIndex(index int) bool {
	return index >= 0 && index < TrancheCount
}

// Tranche represents one risk class of a bond. Exactly three exist per bond,
// with Index 0 (Senior), 1 (Mezzanine), 2 (Junior); lower index is paid first
// in the revenue waterfall.
//
// Invariant: TotalInvested <= AllocationCap at all times.
type Tranche struct {
	Base
	BondID           string `gorm:"type:uuid;not null;uniqueIndex:idx_bond_tranche" json:"bond_id"`
	Index            int    `gorm:"column:tranche_index;not null;uniqueIndex:idx_bond_tranche" json:"index"`
	Name             string `gorm:"not null" json:"name"`
	AllocationCap    int64  `gorm:"type:bigint;not null" json:"allocation_cap"`
	RateBps          int64  `gorm:"type:bigint;not null" json:"rate_bps"` // annual rate in basis points, 10000 = 100%
	TotalInvested    int64  `gorm:"type:bigint;not null;default:0" json:"total_invested"`
	TotalRedeemed    int64  `gorm:"type:bigint;not null;default:0" json:"total_redeemed"`
	AccumulatedYield int64  `gorm:"type:bigint;not null;default:0" json:"accumulated_yield"`

	// Relationships
	Investments []Investment `gorm:"foreignKey:BondID,TrancheIndex;references:BondID,Index" json:"investments,omitempty"`
}

// Remaining returns the principal the tranche can still accept.
func (t *Tranche) Remaining() int64 {
	return t.AllocationCap - t.TotalInvested
}
