package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "user@example.com", false},
		{"valid email with subdomain", "user@mail.example.com", false},
		{"empty email", "", true},
		{"invalid format", "invalid-email", true},
		{"missing @", "userexample.com", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", true},
		{"valid with plus", "user+tag@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		wantErr     bool
	}{
		{"plain", "Ada Lovelace", false},
		{"unicode", "Zoë Ålander", false},
		{"blank", "   ", true},
		{"too long", strings.Repeat("é", 81), true},
		{"invalid utf8", "bad\xff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDisplayName(tt.displayName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDisplayName() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"minimum length", "pass1234", false},
		{"empty", "", true},
		{"too short", "pass", true},
		{"past bcrypt limit", strings.Repeat("a", 73), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid http", "http://example.com", false},
		{"valid https", "https://example.com/movies/1.m3u8", false},
		{"empty", "", true},
		{"invalid scheme", "ftp://example.com", true},
		{"websocket scheme", "wss://example.com", true},
		{"no host", "http://", true},
		{"invalid format", "not-a-url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseWindowDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"7", 7, false},
		{" 30 ", 30, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"", 0, true},
		{"week", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWindowDays(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindowDays(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseWindowDays(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42", "show id"); err != nil || id != 42 {
		t.Errorf("ParseID(42) = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc", "9223372036854775808"} {
		if _, err := ParseID(raw, "show id"); err == nil {
			t.Errorf("ParseID(%q) expected error", raw)
		}
	}
}

func TestValidateDiscountPercent(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"15", false},
		{"0.5", false},
		{"100", false},
		{"0", true},
		{"-5", true},
		{"100.01", true},
	}

	for _, tt := range tests {
		err := ValidateDiscountPercent(decimal.RequireFromString(tt.value))
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDiscountPercent(%s) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidatePeriod(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := ValidatePeriod(start, start.Add(time.Hour)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePeriod(start, start); err == nil {
		t.Error("empty period should be rejected")
	}
	if err := ValidatePeriod(start, start.Add(-time.Hour)); err == nil {
		t.Error("reversed period should be rejected")
	}
	if err := ValidatePeriod(time.Time{}, start); err == nil {
		t.Error("missing start should be rejected")
	}
}

func TestValidateStringLength(t *testing.T) {
	if err := ValidateStringLength("abc", 1, 3, "title"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateStringLength("", 1, 3, "title"); err == nil {
		t.Error("expected error for short string")
	}
	if err := ValidateStringLength("abcd", 1, 3, "title"); err == nil {
		t.Error("expected error for long string")
	}
	if err := ValidateNonEmptyString(" \t", "title"); err == nil {
		t.Error("expected error for blank string")
	}
}
