package model

import (
    "strings"
    "time"
)

// Coupon types accepted by the upstream.
const (
    CouponPercentage = "percentage"
    CouponFixed      = "fixed"
)

// Coupon is a discount code issued by a company.
type Coupon struct {
    ID         ID         `json:"id,omitempty"`
    CompanyID  ID         `json:"companyId"`
    Code       string     `json:"code"`
    Type       string     `json:"type"`
    Amount     float64    `json:"amount"`
    UsageLimit int        `json:"usageLimit,omitempty"`
    IsActive   bool       `json:"isActive"`
    StartDate  *time.Time `json:"startDate,omitempty"`
    EndDate    *time.Time `json:"endDate,omitempty"`
}

// Validate checks the fields the coupon form marks as required.
func (c Coupon) Validate() error {
    if err := required("code", strings.TrimSpace(c.Code)); err != nil {
        return err
    }
    if err := required("companyId", c.CompanyID.String()); err != nil {
        return err
    }
    if c.Type != CouponPercentage && c.Type != CouponFixed {
        return &ValidationError{Field: "type", Message: "type must be percentage or fixed"}
    }
    return nil
}
