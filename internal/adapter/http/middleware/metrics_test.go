package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/api/v1/accounts/01ABC123", "/api/v1/accounts/:id"},
		{"/api/v1/accounts/01ABC123/balance", "/api/v1/accounts/:id/balance"},
		{"/api/v1/accounts/01ABC123/entries", "/api/v1/accounts/:id/entries"},
		{"/api/v1/accounts/01ABC123/transactions", "/api/v1/accounts/:id/transactions"},
		{"/api/v1/transactions/01XYZ789", "/api/v1/transactions/:id"},
		{"/api/v1/transactions/01XYZ789/entries", "/api/v1/transactions/:id/entries"},
		{"/api/v1/transactions/system/initial-funds", "/api/v1/transactions/system/initial-funds"},
		{"/api/v1/accounts", "/api/v1/accounts"},
		{"/api/v1/accounts/", "/api/v1/accounts/"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}
