package model

import (
    "strings"
    "time"
)

// User is a platform account as returned by /user and /user/me.
type User struct {
    ID             ID         `json:"id,omitempty"`
    Username       string     `json:"username,omitempty"`
    FullName       string     `json:"fullName,omitempty"`
    Email          string     `json:"email,omitempty"`
    Phone          string     `json:"phone,omitempty"`
    Role           string     `json:"role,omitempty"`
    IsActive       *bool      `json:"isActive,omitempty"`
    ProfilePicture string     `json:"profilePicture,omitempty"`
    Verified       *bool      `json:"verified,omitempty"`
    CreatedAt      *time.Time `json:"createdAt,omitempty"`
    UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Validate checks the fields the user form marks as required.
func (u User) Validate() error {
    if err := required("username", strings.TrimSpace(u.Username)); err != nil {
        return err
    }
    return required("email", strings.TrimSpace(u.Email))
}
