package services

import (
	"sync"
	"testing"
)

func TestFormatIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		value    uint64
		padWidth int
		expected string
	}{
		{
			name:     "small value padded",
			prefix:   "ARB",
			value:    123,
			padWidth: 6,
			expected: "ARB-000123",
		},
		{
			name:     "first value",
			prefix:   "STU",
			value:    1,
			padWidth: 6,
			expected: "STU-000001",
		},
		{
			name:     "value wider than padding",
			prefix:   "ARB",
			value:    12345678,
			padWidth: 6,
			expected: "ARB-12345678",
		},
		{
			name:     "narrow padding",
			prefix:   "X",
			value:    7,
			padWidth: 3,
			expected: "X-007",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := FormatIdentifier(tc.prefix, tc.value, tc.padWidth)
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNextAllocatesSequentially(t *testing.T) {
	db := testDB(t)
	svc := NewSequenceServiceWithDB(db)

	first, err := svc.Next(NamespaceApplication)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Next(NamespaceApplication)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != "ARB-000001" || second != "ARB-000002" {
		t.Fatalf("expected ARB-000001 then ARB-000002, got %q then %q", first, second)
	}
}

func TestNextNamespacesAreIndependent(t *testing.T) {
	db := testDB(t)
	svc := NewSequenceServiceWithDB(db)

	if _, err := svc.Next(NamespaceApplication); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roll, err := svc.Next(NamespaceRoll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roll != "STU-000001" {
		t.Fatalf("roll namespace should start at 1, got %q", roll)
	}
}

func TestNextRejectsUnknownNamespace(t *testing.T) {
	db := testDB(t)
	svc := NewSequenceServiceWithDB(db)

	if _, err := svc.Next("invoices"); err == nil {
		t.Fatal("expected error for unknown namespace")
	}
}

func TestNextConcurrentCallersNeverCollide(t *testing.T) {
	db := testDB(t)
	svc := NewSequenceServiceWithDB(db)

	const workers = 10
	results := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Next(NamespaceApplication)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- id
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for id := range results {
		if seen[id] {
			t.Fatalf("duplicate identifier issued: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d unique identifiers, got %d", workers, len(seen))
	}
}
