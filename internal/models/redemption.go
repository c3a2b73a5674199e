package models

import "time"

// Redemption records a settled payout of principal plus realized yield for
// one investor position. A row exists only for redemptions whose ledger
// transfer succeeded.
type Redemption struct {
	Base
	BondID       string    `gorm:"type:uuid;not null;index" json:"bond_id"`
	TrancheIndex int       `gorm:"not null" json:"tranche_index"`
	InvestorID   string    `gorm:"type:uuid;not null;index" json:"investor_id"`
	Principal    int64     `gorm:"type:bigint;not null" json:"principal"`
	Yield        int64     `gorm:"type:bigint;not null" json:"yield"`
	Payout       int64     `gorm:"type:bigint;not null" json:"payout"`
	RedeemedAt   time.Time `gorm:"not null" json:"redeemed_at"`
}
