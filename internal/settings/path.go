package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownKey is returned for a dotted path that names no setting.
	ErrUnknownKey = errors.New("unknown setting")
	// ErrInvalidValue is returned when a value cannot be coerced to the
	// setting's type.
	ErrInvalidValue = errors.New("invalid setting value")
)

// apply sets the field named by path on s. value is what a JSON decoder
// produced: string, float64, bool or nil.
func apply(s *Settings, path string, value any) error {
	switch path {
	case "theme":
		v, err := asString(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		switch v {
		case ThemeLight, ThemeDark, ThemeCustom:
			s.Theme = v
		default:
			return fmt.Errorf("%s=%q: %w", path, v, ErrInvalidValue)
		}
	case "itemsPerPage":
		n, err := asInt(value)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: %w", path, ErrInvalidValue)
		}
		s.ItemsPerPage = n
	case "notifications.email":
		return setBool(path, &s.Notifications.Email, value)
	case "notifications.push":
		return setBool(path, &s.Notifications.Push, value)
	case "notifications.sms":
		return setBool(path, &s.Notifications.SMS, value)
	case "notifications.bookings":
		return setBool(path, &s.Notifications.Bookings, value)
	case "autoSave":
		return setBool(path, &s.AutoSave, value)
	case "compactMode":
		return setBool(path, &s.CompactMode, value)
	case "customTheme.primary":
		return setString(path, &s.CustomTheme.Primary, value)
	case "customTheme.secondary":
		return setString(path, &s.CustomTheme.Secondary, value)
	case "customTheme.background":
		return setString(path, &s.CustomTheme.Background, value)
	case "customTheme.surface":
		return setString(path, &s.CustomTheme.Surface, value)
	case "customTheme.text":
		return setString(path, &s.CustomTheme.Text, value)
	default:
		return fmt.Errorf("%q: %w", path, ErrUnknownKey)
	}
	return nil
}

func setBool(path string, dst *bool, value any) error {
	switch v := value.(type) {
	case bool:
		*dst = v
	case string:
		*dst = truthy(v)
	case float64:
		*dst = v != 0
	default:
		return fmt.Errorf("%s: %w", path, ErrInvalidValue)
	}
	return nil
}

func setString(path string, dst *string, value any) error {
	v, err := asString(value)
	if err != nil || v == "" {
		return fmt.Errorf("%s: %w", path, ErrInvalidValue)
	}
	*dst = v
	return nil
}

func asString(value any) (string, error) {
	if v, ok := value.(string); ok {
		return strings.TrimSpace(v), nil
	}
	return "", ErrInvalidValue
}

func asInt(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, ErrInvalidValue
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, ErrInvalidValue
		}
		return n, nil
	}
	return 0, ErrInvalidValue
}
