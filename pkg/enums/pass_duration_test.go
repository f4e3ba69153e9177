package enums

import "testing"

func TestPassDurationDays(t *testing.T) {
	tests := []struct {
		value PassDuration
		days  int
	}{
		{PassDurationWeek, 7},
		{PassDurationFortnight, 15},
		{PassDurationMonth, 30},
		{PassDuration("45 Days"), 30},
		{PassDuration(""), 30},
	}
	for _, tt := range tests {
		if got := tt.value.Days(); got != tt.days {
			t.Fatalf("duration %q expected %d days, got %d", tt.value, tt.days, got)
		}
	}
}

func TestParseApplicationStatus(t *testing.T) {
	status, err := ParseApplicationStatus("manual_review")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if status != ApplicationStatusManualReview {
		t.Fatalf("unexpected status %q", status)
	}
	if _, err := ParseApplicationStatus("expired"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if ApplicationStatus("expired").IsValid() {
		t.Fatal("expired must not be a valid stored status")
	}
}
