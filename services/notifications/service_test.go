package notifications

import (
	"reflect"
	"testing"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/models"
)

func TestNormalizeChannels(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		hasEmail bool
		hasPhone bool
		expected []string
	}{
		{
			name:     "explicit channels pass through",
			in:       []string{"email"},
			hasEmail: true,
			hasPhone: true,
			expected: []string{"email"},
		},
		{
			name:     "unknown channels dropped",
			in:       []string{"sms", "email", "fax"},
			hasEmail: true,
			expected: []string{"email"},
		},
		{
			name:     "duplicates removed",
			in:       []string{"whatsapp", "whatsapp"},
			hasPhone: true,
			expected: []string{"whatsapp"},
		},
		{
			name:     "default from contact info",
			hasEmail: true,
			hasPhone: true,
			expected: []string{"email", "whatsapp"},
		},
		{
			name:     "phone only default",
			hasPhone: true,
			expected: []string{"whatsapp"},
		},
		{
			name: "no contact info",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeChannels(tc.in, tc.hasEmail, tc.hasPhone)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestMessageBuildersAddressGuardian(t *testing.T) {
	app := &models.AdmissionApplication{
		ApplicationNumber: "ARB-000001",
		StudentName:       "Abdullah Khan",
		GuardianName:      "Rashid Khan",
		ContactNumber:     "03001234567",
		Email:             "rashid@example.com",
	}

	msg := ApplicationReceived(app)
	if msg.RecipientName != "Rashid Khan" {
		t.Fatalf("expected guardian as recipient, got %q", msg.RecipientName)
	}
	if msg.Email != app.Email || msg.Phone != app.ContactNumber {
		t.Fatal("contact info must carry over")
	}
}

func TestMessageBuildersFallBackToStudent(t *testing.T) {
	app := &models.AdmissionApplication{
		ApplicationNumber: "ARB-000002",
		StudentName:       "Abdullah Khan",
		ContactNumber:     "03001234567",
		Status:            models.AdmissionStatusRejected,
		StatusReason:      "incomplete documents",
	}

	msg := ApplicationDecided(app)
	if msg.RecipientName != "Abdullah Khan" {
		t.Fatalf("expected student as recipient, got %q", msg.RecipientName)
	}
}
