package envutil

import (
	"testing"
	"time"
)

func TestSeconds(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 3 * time.Second},
		{"180", 180 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"-4", 3 * time.Second},
		{"nope", 3 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("LP_TEST_SECONDS", tc.raw)
		if got := Seconds("LP_TEST_SECONDS", 3*time.Second); got != tc.want {
			t.Fatalf("Seconds(%q)=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("LP_TEST_BOOL", "off")
	if Bool("LP_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("LP_TEST_INT", "x")
	if Int("LP_TEST_INT", 7) != 7 {
		t.Fatalf("expected default")
	}
	t.Setenv("LP_TEST_STR", "  v ")
	if String("LP_TEST_STR", "d") != "v" {
		t.Fatalf("expected trimmed value")
	}
}
