// Package settings is the admin preferences panel: theme, rows per page,
// notification toggles and the custom colour palette. Values are kept in
// memory in typed form and persisted through a Repository as individual
// string entries.
package settings

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Themes.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeCustom = "custom"
)

// Settings is one admin's preferences.
type Settings struct {
	Theme         string        `json:"theme"`
	ItemsPerPage  int           `json:"itemsPerPage"`
	Notifications Notifications `json:"notifications"`
	AutoSave      bool          `json:"autoSave"`
	CompactMode   bool          `json:"compactMode"`
	CustomTheme   Palette       `json:"customTheme"`
}

// Notifications are the per-channel toggles.
type Notifications struct {
	Email    bool `json:"email"`
	Push     bool `json:"push"`
	SMS      bool `json:"sms"`
	Bookings bool `json:"bookings"`
}

// Palette is the colour set used by the custom theme.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
}

// Defaults returns the settings used for any key that was never stored.
func Defaults() Settings {
	return Settings{
		Theme:        ThemeLight,
		ItemsPerPage: 10,
		Notifications: Notifications{
			Email:    true,
			Push:     true,
			SMS:      false,
			Bookings: true,
		},
		CustomTheme: Palette{
			Primary:    "#1976d2",
			Secondary:  "#9c27b0",
			Background: "#f5f5f5",
			Surface:    "#ffffff",
			Text:       "#212121",
		},
	}
}

// Storage keys. Every value is written as its own string entry.
const (
	keyTheme         = "theme"
	keyItemsPerPage  = "itemsPerPage"
	keyNotifEmail    = "notifications.email"
	keyNotifPush     = "notifications.push"
	keyNotifSMS      = "notifications.sms"
	keyNotifBookings = "notifications.bookings"
	keyAutoSave      = "autoSave"
	keyCompactMode   = "compactMode"
	keyCustomTheme   = "customTheme"
)

// fromEntries overlays stored entries on the defaults. Values are coerced
// where they are read; anything that does not parse keeps the default.
func fromEntries(entries map[string]string) Settings {
	s := Defaults()
	if v, ok := entries[keyTheme]; ok && v != "" {
		s.Theme = v
	}
	if v, ok := entries[keyItemsPerPage]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			s.ItemsPerPage = n
		}
	}
	readBool(entries, keyNotifEmail, &s.Notifications.Email)
	readBool(entries, keyNotifPush, &s.Notifications.Push)
	readBool(entries, keyNotifSMS, &s.Notifications.SMS)
	readBool(entries, keyNotifBookings, &s.Notifications.Bookings)
	readBool(entries, keyAutoSave, &s.AutoSave)
	readBool(entries, keyCompactMode, &s.CompactMode)
	if v, ok := entries[keyCustomTheme]; ok && v != "" {
		var p Palette
		if err := json.Unmarshal([]byte(v), &p); err == nil {
			mergePalette(&s.CustomTheme, p)
		}
	}
	return s
}

// toEntries is the inverse of fromEntries.
func toEntries(s Settings) map[string]string {
	palette, _ := json.Marshal(s.CustomTheme)
	return map[string]string{
		keyTheme:         s.Theme,
		keyItemsPerPage:  strconv.Itoa(s.ItemsPerPage),
		keyNotifEmail:    strconv.FormatBool(s.Notifications.Email),
		keyNotifPush:     strconv.FormatBool(s.Notifications.Push),
		keyNotifSMS:      strconv.FormatBool(s.Notifications.SMS),
		keyNotifBookings: strconv.FormatBool(s.Notifications.Bookings),
		keyAutoSave:      strconv.FormatBool(s.AutoSave),
		keyCompactMode:   strconv.FormatBool(s.CompactMode),
		keyCustomTheme:   string(palette),
	}
}

func readBool(entries map[string]string, key string, dst *bool) {
	if v, ok := entries[key]; ok && v != "" {
		*dst = truthy(v)
	}
}

// truthy is the loose boolean reading applied to stored strings.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func mergePalette(dst *Palette, src Palette) {
	if src.Primary != "" {
		dst.Primary = src.Primary
	}
	if src.Secondary != "" {
		dst.Secondary = src.Secondary
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.Surface != "" {
		dst.Surface = src.Surface
	}
	if src.Text != "" {
		dst.Text = src.Text
	}
}
