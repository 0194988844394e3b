package phone

import (
	"errors"
	"testing"
)

func TestNormalize_FormattingVariantsCollapse(t *testing.T) {
	inputs := []string{"5551234567", "555-123-4567", "(555) 123-4567", " +1 555 123 4567 "}

	for _, in := range inputs {
		got, err := Normalize(in, "US")
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", in, err)
		}
		if got != "+15551234567" {
			t.Errorf("Normalize(%q): expected +15551234567, got %q", in, got)
		}
	}
}

func TestNormalize_DefaultRegion(t *testing.T) {
	got, err := Normalize("5551234567", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+15551234567" {
		t.Fatalf("expected default region US, got %q", got)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "not a number"} {
		if _, err := Normalize(in, "US"); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("Normalize(%q): expected ErrInvalidNumber, got %v", in, err)
		}
	}
}
