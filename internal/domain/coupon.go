package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type CouponType string

const (
	CouponAmount  CouponType = "amount"
	CouponPercent CouponType = "percent"
)

type Discount struct {
	Percent *float64 `json:"percent,omitempty"`
	EGP     *float64 `json:"egp,omitempty"`
	Euro    *float64 `json:"euro,omitempty"`
}

type Coupon struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Type           CouponType `json:"type"`
	Discount       Discount   `json:"discount"`
	ExpirationDate time.Time  `json:"expirationDate"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Redeemable reports whether the coupon can be used at now.
func (c *Coupon) Redeemable(now time.Time) bool {
	return c.Active && !c.ExpirationDate.Before(now)
}

type Application struct {
	Total           float64 `json:"total"`
	DiscountApplied float64 `json:"discountApplied"`
	Reason          string  `json:"reason,omitempty"`
}

// ApplyTo discounts total in the given currency. The result never drops below zero.
func (c *Coupon) ApplyTo(total float64, currency string, now time.Time) Application {
	if !c.Active {
		return Application{Total: total, Reason: "inactive"}
	}
	if c.ExpirationDate.Before(now) {
		return Application{Total: total, Reason: "expired"}
	}

	var discount float64
	if c.Type == CouponPercent {
		if c.Discount.Percent != nil {
			discount = total * *c.Discount.Percent / 100
		}
	} else {
		var value *float64
		switch strings.ToLower(currency) {
		case "egp":
			value = c.Discount.EGP
		case "euro", "eur":
			value = c.Discount.Euro
		}
		if value == nil {
			return Application{Total: total, Reason: fmt.Sprintf("no amount defined for currency %s", currency)}
		}
		discount = *value
	}

	newTotal := math.Max(0, math.Round((total-discount)*100)/100)
	return Application{Total: newTotal, DiscountApplied: discount}
}
