package utils

import "testing"

func TestIsValidTestSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{"quran", true},
		{"oral", true},
		{"written", true},
		{"Quran", false},
		{"maths", false},
		{"", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.subject, func(t *testing.T) {
			if got := IsValidTestSubject(tc.subject); got != tc.want {
				t.Fatalf("IsValidTestSubject(%q) = %v, want %v", tc.subject, got, tc.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"owner", "admin", "registrar"} {
		if !IsValidRole(role) {
			t.Fatalf("expected %q to be a valid role", role)
		}
	}
	if IsValidRole("teacher") {
		t.Fatalf("teacher is not a role in this system")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  Abdul Rahman\x00  "); got != "Abdul Rahman" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
}
