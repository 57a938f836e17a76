package utils

import "testing"

func TestIsValidInterval(t *testing.T) {
	for _, interval := range []string{"Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year"} {
		if !IsValidInterval(interval) {
			t.Errorf("IsValidInterval(%q) = false, want true", interval)
		}
	}
	for _, interval := range []string{"", "day", "Second", "Day; DROP TABLE funnel_events"} {
		if IsValidInterval(interval) {
			t.Errorf("IsValidInterval(%q) = true, want false", interval)
		}
	}
}
