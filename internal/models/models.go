package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the layout of every calendar date the service stores or accepts.
const DateLayout = "2006-01-02"

// MaxBonusLength is the maximum number of characters in a trimmed bonus note.
const MaxBonusLength = 250

type Entry struct {
	ID        string     `db:"id" json:"id"`
	Date      string     `db:"date" json:"date"`
	Things    Things     `db:"things" json:"things"`
	Bonus     *string    `db:"bonus" json:"bonus,omitempty"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// EntryInput is one entry of a bulk import.
type EntryInput struct {
	Date   string   `json:"date"`
	Things []string `json:"things"`
	Bonus  *string  `json:"bonus,omitempty"`
}

type Session struct {
	TokenDigest string    `db:"token_digest" json:"-"`
	ExpiresAt   time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type WeeklyImage struct {
	WeekStart  string    `db:"week_start" json:"weekStart"`
	StorageID  string    `db:"storage_id" json:"storageId"`
	ImageURL   string    `db:"image_url" json:"imageUrl"`
	Prompt     string    `db:"prompt" json:"prompt"`
	ThingCount int       `db:"thing_count" json:"thingCount"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type Overview struct {
	LiveEntries    int `db:"live_entries" json:"live_entries"`
	DeletedEntries int `db:"deleted_entries" json:"deleted_entries"`
	ActiveSessions int `db:"active_sessions" json:"active_sessions"`
	WeeklyImages   int `db:"weekly_images" json:"weekly_images"`
}

// Things is the ordered list of things for one day, stored as a JSON array.
type Things []string

func (t Things) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Things) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Things{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("things: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("things: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}
