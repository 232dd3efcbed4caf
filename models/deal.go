package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type Deal struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string          `gorm:"not null" json:"title"`
	Description  string          `json:"description"`
	DiscountType DiscountType    `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	Value        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	// MaxDiscount caps the absolute discount of percentage deals. Zero means no cap.
	MaxDiscount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"max_discount"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      time.Time       `json:"ends_at"`
	Active      bool            `gorm:"default:true" json:"active"`
	Products    []DealProduct   `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE" json:"products"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type DealProduct struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	DealID    uint     `gorm:"index" json:"deal_id"`
	ProductID uint     `gorm:"index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// CurrentAt reports whether the deal applies at the given instant.
func (d *Deal) CurrentAt(t time.Time) bool {
	if !d.Active {
		return false
	}
	if !d.StartsAt.IsZero() && t.Before(d.StartsAt) {
		return false
	}
	if !d.EndsAt.IsZero() && t.After(d.EndsAt) {
		return false
	}
	return true
}
