package models

import "time"

// BondStatus represents the lifecycle state of a bond.
type BondStatus string

const (
	BondStatusActive    BondStatus = "ACTIVE"
	BondStatusMatured   BondStatus = "MATURED"
	BondStatusDefaulted BondStatus = "DEFAULTED"
)

// Terminal reports whether the status permits no further transitions.
func (s BondStatus) Terminal() bool {
	return s == BondStatusMatured || s == BondStatusDefaulted
}

// Bond represents a single tiered bond issuance. Each bond carries exactly
// three tranches (Senior, Mezzanine, Junior) created atomically at issuance.
// IssuedAt is the epoch for all time-weighted yield accrual.
type Bond struct {
	Base
	IssuerID                string     `gorm:"type:uuid;not null;index" json:"issuer_id"`
	AssetRef                string     `json:"asset_ref,omitempty"` // opaque reference to the underlying collateral asset
	TotalValue              int64      `gorm:"type:bigint;not null" json:"total_value"`
	MaturityDate            time.Time  `gorm:"not null" json:"maturity_date"`
	IssuedAt                time.Time  `gorm:"not null" json:"issued_at"`
	Status                  BondStatus `gorm:"not null;default:'ACTIVE'" json:"status"`
	TotalRevenueDistributed int64      `gorm:"type:bigint;not null;default:0" json:"total_revenue_distributed"`

	// Relationships
	Tranches []Tranche `gorm:"foreignKey:BondID;references:ID" json:"tranches,omitempty"`
}

// TrancheAt returns the tranche with the given index, or nil if the bond's
// tranches are not loaded or the index is out of range.
func (b *Bond) TrancheAt(index int) *Tranche {
	for i := range b.Tranches {
		if b.Tranches[i].Index == index {
			return &b.Tranches[i]
		}
	}
	return nil
}
