package coverage

import "testing"

func TestParseCadence(t *testing.T) {
	cases := []struct {
		notes string
		want  int
	}{
		{"Subscribe 3 months", 3},
		{"", 1},
		{"no subscription info", 1},
		{"1 month", 1},
		{"2 mos prepaid", 2},
		{"6mo plan", 6},
		{"3 months free, then 1 month billing", 4}, // summing rule
		{"renews every 12 Months", 12},
		{"0 months", 1}, // floor
	}
	for _, tc := range cases {
		if got := ParseCadence(tc.notes); got != tc.want {
			t.Errorf("ParseCadence(%q) = %d, want %d", tc.notes, got, tc.want)
		}
	}
}
