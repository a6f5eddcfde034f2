package models

import (
	"math"
	"strconv"
	"time"
)

// TextID identifies a stored prompt/response record.
type TextID uint64

// ParseTextID parses a decimal record id as it appears in a URL, with the
// same bounds as ParseUserID.
func ParseTextID(s string) (TextID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v == 0 || v > math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return TextID(v), nil
}

// Owned is implemented by every record that belongs to exactly one user.
type Owned interface {
	OwnerID() UserID
}

// GeneratedText is a prompt sent to the provider together with its response.
type GeneratedText struct {
	ID        TextID    `json:"id" gorm:"primaryKey"`
	UserID    UserID    `json:"-" gorm:"not null;index"`
	Prompt    string    `json:"prompt" gorm:"type:text;not null"`
	Response  string    `json:"response" gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp"`
}

func (GeneratedText) TableName() string {
	return "generated_texts"
}

func (g *GeneratedText) OwnerID() UserID {
	return g.UserID
}
