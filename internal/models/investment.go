package models

// Investment represents one investor's principal position in a bond tranche.
// A row is created on the first invest call per (bond, tranche, investor),
// increased on subsequent calls, and zeroed in full on redemption. Principal
// is never negative; zero means the position has been redeemed.
type Investment struct {
	Base
	BondID       string `gorm:"type:uuid;not null;uniqueIndex:idx_position" json:"bond_id"`
	TrancheIndex int    `gorm:"not null;uniqueIndex:idx_position" json:"tranche_index"`
	InvestorID   string `gorm:"type:uuid;not null;uniqueIndex:idx_position;index" json:"investor_id"`
	Principal    int64  `gorm:"type:bigint;not null;default:0" json:"principal"`

	// Relationships
	Bond Bond `gorm:"foreignKey:BondID;references:ID" json:"bond,omitempty"`
}
