package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"happythings/internal/models"
)

// ValidateDate accepts only real calendar dates written as YYYY-MM-DD.
func ValidateDate(date string) error {
	if len(date) != len(models.DateLayout) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, date)
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, date)
	}
	return nil
}

// normalizeBonus trims text and maps blank text to nil.
func normalizeBonus(text string) (*string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) > models.MaxBonusLength {
		return nil, ErrBonusTooLong
	}
	if trimmed == "" {
		return nil, nil
	}
	return &trimmed, nil
}

func normalizeThings(things []string) []string {
	if things == nil {
		return []string{}
	}
	return things
}
