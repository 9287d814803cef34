package docket_test

import (
	"testing"
	"time"

	"gavel/internal/docket"
)

func TestFormatUsesPublicationYear(t *testing.T) {
	pub := time.Date(2024, time.October, 3, 12, 0, 0, 0, time.UTC)
	got := docket.Format(pub, 17, 2)
	if got != "24-0017-2" {
		t.Fatalf("Format returned %q, want 24-0017-2", got)
	}
}

func TestFormatIsStableAcrossCalls(t *testing.T) {
	pub := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	first := docket.Format(pub, 1, 1)
	second := docket.Format(pub, 1, 1)
	if first != second {
		t.Fatalf("expected identical dockets, got %q and %q", first, second)
	}
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{"24-0017-2", "25-0001-1", "99-9999-12"}
	for _, value := range cases {
		parsed, err := docket.Parse(value)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", value, err)
		}
		if parsed.String() != value {
			t.Fatalf("round trip of %q produced %q", value, parsed.String())
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{"", "24-17-2", "24-0017", "abc", "24-0017-0", "24-0000-1", "240017-1"}
	for _, value := range cases {
		if _, err := docket.Parse(value); err == nil {
			t.Fatalf("Parse(%q) unexpectedly succeeded", value)
		}
	}
}

func TestLessOrdersByComponents(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"24-0001-2", "24-0001-10", true},
		{"24-0001-10", "24-0001-2", false},
		{"24-0002-1", "24-0010-1", true},
		{"24-0010-1", "25-0001-1", true},
		{"24-0001-1", "24-0001-1", false},
		{"garbage", "24-0001-1", false},
		{"24-0001-1", "garbage", true},
		{"aaa", "bbb", true},
	}
	for _, tc := range cases {
		if got := docket.Less(tc.a, tc.b); got != tc.want {
			t.Errorf("Less(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !docket.Valid("25-0197-1") {
		t.Fatal("expected 25-0197-1 to be valid")
	}
	if docket.Valid("25-0197-x") {
		t.Fatal("expected 25-0197-x to be invalid")
	}
}
