package utils

import (
	"testing"
	"time"
)

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 2, 18, 12, 0, 0, 0, Eastern)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 30 {
		t.Errorf("MarketOpenTime = %v, want 09:30", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 16 || close.Minute() != 0 {
		t.Errorf("MarketCloseTime = %v, want 16:00", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday 10:00 ET
	if !IsMarketOpenAt(time.Date(2026, 2, 18, 10, 0, 0, 0, Eastern)) {
		t.Error("expected market open on Wednesday 10:00")
	}
	// Saturday
	if IsMarketOpenAt(time.Date(2026, 2, 21, 10, 0, 0, 0, Eastern)) {
		t.Error("expected market closed on Saturday")
	}
	// Christmas
	if IsMarketOpenAt(time.Date(2026, 12, 25, 11, 0, 0, 0, Eastern)) {
		t.Error("expected market closed on Christmas")
	}
	// Close is exclusive
	if IsMarketOpenAt(time.Date(2026, 2, 18, 16, 0, 0, 0, Eastern)) {
		t.Error("expected market closed at 16:00")
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		hour, min int
		expected  string
	}{
		{3, 0, "closed"},
		{7, 45, "pre-market"},
		{9, 30, "open"},
		{17, 0, "after-hours"},
		{21, 0, "closed"},
	}

	for _, tt := range tests {
		at := time.Date(2026, 2, 18, tt.hour, tt.min, 0, 0, Eastern)
		if got := MarketStatusAt(at); got != tt.expected {
			t.Errorf("MarketStatusAt(%02d:%02d) = %s, want %s", tt.hour, tt.min, got, tt.expected)
		}
	}
}
