package model

import "strings"

// Resource is something bookable that belongs to a company (a desk, a
// court, a room).
type Resource struct {
    ID                      ID      `json:"id,omitempty"`
    Name                    string  `json:"name"`
    CompanyID               ID      `json:"companyId"`
    Price                   float64 `json:"price"`
    ResourceCategoryID      *ID     `json:"resourceCategoryId,omitempty"`
    IsBookable              bool    `json:"isBookable"`
    IsTimeSlotBased         bool    `json:"isTimeSlotBased"`
    TimeSlotDurationMinutes int     `json:"timeSlotDurationMinutes,omitempty"`
    Images                  []Image `json:"images,omitempty"`
}

// Validate checks the fields the resource form marks as required.
func (r Resource) Validate() error {
    if err := required("name", strings.TrimSpace(r.Name)); err != nil {
        return err
    }
    if err := required("companyId", r.CompanyID.String()); err != nil {
        return err
    }
    if r.IsTimeSlotBased && r.TimeSlotDurationMinutes <= 0 {
        return &ValidationError{Field: "timeSlotDurationMinutes", Message: "timeSlotDurationMinutes must be positive for time slot based resources"}
    }
    return nil
}
