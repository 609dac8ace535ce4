package model

import "strings"

// Floor groups places inside a location.
type Floor struct {
    ID         ID      `json:"id,omitempty"`
    Name       string  `json:"name"`
    LocationID ID      `json:"locationId,omitempty"`
    Places     []Place `json:"places,omitempty"`
}

// Validate checks the fields the floor form marks as required.
func (f Floor) Validate() error {
    return required("name", strings.TrimSpace(f.Name))
}

// Place is a seat, table or spot on a floor.
type Place struct {
    ID       ID     `json:"id,omitempty"`
    Name     string `json:"name"`
    FloorID  ID     `json:"floorId"`
    Capacity int    `json:"capacity"`
    IsActive bool   `json:"isActive"`
}

// Validate checks the fields the place form marks as required.
func (p Place) Validate() error {
    if err := required("name", strings.TrimSpace(p.Name)); err != nil {
        return err
    }
    return required("floorId", p.FloorID.String())
}
