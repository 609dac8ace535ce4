package model

import "fmt"

// ValidationError reports a required form field that is missing or invalid.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Message != "" {
        return e.Message
    }
    return fmt.Sprintf("%s is required", e.Field)
}

func required(field, value string) error {
    if value == "" {
        return &ValidationError{Field: field}
    }
    return nil
}
