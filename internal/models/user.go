package models

import (
	"math"
	"strconv"
	"strings"
)

// UserID identifies a registered user.
type UserID uint64

// String returns the canonical decimal form carried in token subjects.
func (id UserID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseUserID parses the canonical decimal form. Zero and values beyond the
// signed 64-bit range are rejected since the database never assigns them.
func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v == 0 || v > math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return UserID(v), nil
}

// User represents a registered user of the API.
type User struct {
	ID           UserID `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;type:varchar(80);not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(120);not null"` // never serialized
}

func (User) TableName() string {
	return "users"
}

// NormalizeUsername is the single place usernames are case-folded.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}
