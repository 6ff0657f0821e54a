package services

import (
	"encoding/base64"
	"fmt"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func encodeCursor(date string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(date))
}

func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrInvalidCursor)
	}
	date := string(raw)
	if ValidateDate(date) != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, ErrInvalidCursor)
	}
	return date, nil
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	default:
		return n
	}
}
