package user

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Theme values accepted in preferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// Date formats accepted in preferences.
const (
	DateFormatDMY = "DD/MM/YYYY"
	DateFormatMDY = "MM/DD/YYYY"
	DateFormatISO = "YYYY-MM-DD"
)

// Notifications holds per-channel notification flags.
type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

// Preferences holds UI preferences stored with the user.
type Preferences struct {
	Theme         string        `gorm:"type:text" json:"theme"`
	Notifications Notifications `gorm:"embedded;embeddedPrefix:notify_" json:"notifications"`
	DateFormat    string        `gorm:"type:text" json:"dateFormat"`
}

// DefaultPreferences returns the preferences a new account starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeAuto,
		Notifications: Notifications{Email: true, Push: false},
		DateFormat:    DateFormatDMY,
	}
}

// User represents a registered account.
type User struct {
	ID           string      `gorm:"primaryKey;type:text"`
	Name         string      `gorm:"not null"`
	Email        string      `gorm:"uniqueIndex;not null"`
	PasswordHash string      `gorm:"not null"`
	Avatar       string      `gorm:"type:text"`
	IsActive     bool        `gorm:"not null"`
	LastLogin    *time.Time
	Preferences  Preferences `gorm:"embedded;embeddedPrefix:pref_"`
	CreatedAt    time.Time   `gorm:"index"`
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// DisplayName capitalizes every word of the name.
func (u *User) DisplayName() string {
	words := strings.Fields(u.Name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// Profile returns the public view of the user. The password hash never leaves
// the auth module.
func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Name:        u.Name,
		DisplayName: u.DisplayName(),
		Email:       u.Email,
		Avatar:      u.Avatar,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Profile is the user record as returned to clients.
type Profile struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	Avatar      string      `json:"avatar"`
	IsActive    bool        `json:"isActive"`
	LastLogin   *time.Time  `json:"lastLogin"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Claims represents the identity carried by a verified token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
