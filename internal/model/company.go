package model

import "strings"

// Company is a business listed in the directory. Mirrors the upstream
// /company resource.
type Company struct {
    ID                  ID           `json:"id,omitempty"`
    Name                string       `json:"name"`
    Description         string       `json:"description,omitempty"`
    Email               string       `json:"email,omitempty"`
    Phone               string       `json:"phone,omitempty"`
    IsOpen247           bool         `json:"isOpen247"`
    Location            *Location    `json:"location,omitempty"`
    WorkingHours        WorkingHours `json:"workingHours,omitempty"`
    CategoryIDs         []ID         `json:"categoryIds,omitempty"`
    ResourceCategoryIDs []ID         `json:"resourceCategoryIds,omitempty"`
    Images              []Image      `json:"images,omitempty"`
    Logo                string       `json:"logo,omitempty"`
}

// Location is the geocoded address picked on the map.
type Location struct {
    Address   string  `json:"address"`
    Latitude  float64 `json:"latitude"`
    Longitude float64 `json:"longitude"`
}

// DayHours is one weekday's opening window.
type DayHours struct {
    Open   string `json:"open,omitempty"`  // "09:00"
    Close  string `json:"close,omitempty"` // "18:00"
    Closed bool   `json:"closed"`
}

// WorkingHours is keyed by lower-case weekday name ("monday" ... "sunday").
type WorkingHours map[string]DayHours

// Image is a stored picture of a company or resource.
type Image struct {
    ID     ID     `json:"id,omitempty"`
    URL    string `json:"url"`
    Index  int    `json:"index"`
    IsMain bool   `json:"isMain"`
}

// Validate checks the fields the company form marks as required.
func (c Company) Validate() error {
    return required("name", strings.TrimSpace(c.Name))
}
