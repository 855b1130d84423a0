package user

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "alice", "Alice"},
		{"mixed case", "jOHN doE", "John Doe"},
		{"extra spaces", "  mary   ann  ", "Mary Ann"},
		{"non ascii", "élodie", "Élodie"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Name: tt.in}
			if got := u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_ProfileOmitsPassword(t *testing.T) {
	u := &User{
		ID:           "user-1",
		Name:         "alice smith",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		IsActive:     true,
		Preferences:  DefaultPreferences(),
	}

	data, err := json.Marshal(u.Profile())
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	body := string(data)
	if strings.Contains(body, "secret") || strings.Contains(strings.ToLower(body), "password") {
		t.Errorf("profile JSON leaks password: %s", body)
	}
	if !strings.Contains(body, `"displayName":"Alice Smith"`) {
		t.Errorf("profile JSON = %s, want displayName", body)
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.Theme != ThemeAuto {
		t.Errorf("Theme = %q, want %q", p.Theme, ThemeAuto)
	}
	if !p.Notifications.Email || p.Notifications.Push {
		t.Errorf("Notifications = %+v, want email on and push off", p.Notifications)
	}
	if p.DateFormat != DateFormatDMY {
		t.Errorf("DateFormat = %q, want %q", p.DateFormat, DateFormatDMY)
	}
}
