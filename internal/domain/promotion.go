package domain

import (
	"math"
	"time"
)

type Promotion struct {
	ID              string    `json:"id" gorm:"primaryKey;size:64"`
	Title           string    `json:"title"`
	Description     string    `json:"description" gorm:"type:text"`
	DiscountPercent int       `json:"discount_percent"`
	Code            string    `json:"code" gorm:"uniqueIndex;size:32"`
	Active          bool      `json:"active" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Apply returns amount reduced by the discount, rounded to cents.
func (p *Promotion) Apply(amount float64) float64 {
	if p == nil || !p.Active || p.DiscountPercent <= 0 {
		return amount
	}
	pct := p.DiscountPercent
	if pct > 100 {
		pct = 100
	}
	out := amount * float64(100-pct) / 100
	return math.Round(out*100) / 100
}
