package internal

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)

	tests := []struct {
		raw string
		ok  bool
	}{
		{"2024-03-01T12:30:45Z", true},
		{"2024-03-01T12:30:45+00:00", true},
		{"2024-03-01T12:30:45", true},
		{"2024-03-01 12:30:45", true},
		{"2024-03-01 12:30:45+00:00", true},
		{"", false},
		{"yesterday", false},
	}

	for _, tt := range tests {
		got, ok := parseTimestamp(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.raw, got, want)
		}
	}
}

func TestParseTimestampFractional(t *testing.T) {
	got, ok := parseTimestamp("2024-03-01T12:30:45.123456")
	if !ok {
		t.Fatal("expected fractional timestamp to parse")
	}
	if got.Nanosecond() != 123456000 {
		t.Errorf("expected 123456000ns, got %d", got.Nanosecond())
	}
}

func TestParseTimestampOffset(t *testing.T) {
	got, ok := parseTimestamp("2024-03-01T14:30:45+02:00")
	if !ok {
		t.Fatal("expected offset timestamp to parse")
	}
	want := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
