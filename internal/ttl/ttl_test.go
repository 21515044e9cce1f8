package ttl

import "testing"

func TestIsInfinite(t *testing.T) {
	if !IsInfinite(0) {
		t.Error("ttl 0 must be infinite")
	}
	if IsInfinite(1) {
		t.Error("ttl 1 must be finite")
	}
	if IsInfinite(7200) {
		t.Error("ttl 7200 must be finite")
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name     string
		created  int64
		ttl      int64
		now      int64
		expected int64
	}{
		{"fresh lease", 1000, 3600, 1000, 3600},
		{"half elapsed", 1000, 3600, 2800, 1800},
		{"exactly expired", 1000, 3600, 4600, 0},
		{"long expired", 1000, 3600, 99999, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.created, tt.ttl, tt.now); got != tt.expected {
				t.Errorf("Remaining(%d, %d, %d) = %d, want %d", tt.created, tt.ttl, tt.now, got, tt.expected)
			}
		})
	}
}

func TestToggle(t *testing.T) {
	if got := Toggle(true); got != 0 {
		t.Errorf("Toggle(true) = %d, want 0", got)
	}
	if got := Toggle(false); got != 7200 {
		t.Errorf("Toggle(false) = %d, want 7200", got)
	}
}

func TestExtendAddsToRemaining(t *testing.T) {
	// Session created at T=0 with ttl=3600; at T=1800 extend by 1800.
	// Remaining is 1800, so the new ttl is remaining+added = 3600, anchored
	// to the unchanged creation instant. Extension never resets elapsed time.
	res := Extend(0, 3600, 1800, 1800)
	if res.AlreadyInfinite {
		t.Fatal("finite lease reported as infinite")
	}
	if res.OldRemaining != 1800 {
		t.Errorf("OldRemaining = %d, want 1800", res.OldRemaining)
	}
	if res.NewTTL != 3600 {
		t.Errorf("NewTTL = %d, want 3600", res.NewTTL)
	}
	if got := ExpiresAt(0, res.NewTTL); got != 3600 {
		t.Errorf("new expiry from creation = %d, want 3600", got)
	}
}

func TestExtendExpiredLease(t *testing.T) {
	// Nothing remains on an expired lease; extension grants only the
	// added time, measured from creation via elapsed arithmetic.
	res := Extend(0, 3600, 10000, 900)
	if res.OldRemaining != 0 {
		t.Errorf("OldRemaining = %d, want 0", res.OldRemaining)
	}
	if res.NewTTL != 900 {
		t.Errorf("NewTTL = %d, want 900", res.NewTTL)
	}
}

func TestExtendInfiniteIsNoop(t *testing.T) {
	res := Extend(0, 0, 5000, 7200)
	if !res.AlreadyInfinite {
		t.Fatal("infinite lease must report AlreadyInfinite")
	}
	if res.NewTTL != 0 {
		t.Errorf("NewTTL = %d, want unchanged 0", res.NewTTL)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1700000000", 1700000000},
		{"2023-11-14T22:13:20Z", 1700000000},
		{"2023-11-14T22:13:20+00:00", 1700000000},
		{"2023-11-14T22:13:20", 1700000000},
		{"2023-11-14T22:13:20.123456", 1700000000},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not-a-time", "14/11/2023"} {
		if _, err := ParseTimestamp(input); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", input)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{0, "0h 0m"},
		{59, "0h 0m"},
		{60, "0h 1m"},
		{3600, "1h 0m"},
		{5400, "1h 30m"},
		{-5, "0h 0m"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.expected {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}
