package domain

import "testing"

func TestLotCodePrefix(t *testing.T) {
	tests := []struct {
		year, month int
		want        string
	}{
		{2026, 3, "LOT-2603"},
		{2026, 12, "LOT-2612"},
		{2030, 1, "LOT-3001"},
	}
	for _, tt := range tests {
		if got := LotCodePrefix(tt.year, tt.month); got != tt.want {
			t.Errorf("LotCodePrefix(%d, %d) = %q, want %q", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestNextLotCode(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		highest string
		want    string
	}{
		{name: "first of the month", prefix: "LOT-2603", highest: "", want: "LOT-2603001"},
		{name: "sequence advances", prefix: "LOT-2603", highest: "LOT-2603007", want: "LOT-2603008"},
		{name: "three digit rollover", prefix: "LOT-2603", highest: "LOT-2603099", want: "LOT-2603100"},
		{name: "suffix widens past 999", prefix: "LOT-2603", highest: "LOT-2603999", want: "LOT-26031000"},
		{name: "garbage suffix restarts", prefix: "LOT-2603", highest: "LOT-2603xyz", want: "LOT-2603001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextLotCode(tt.prefix, tt.highest); got != tt.want {
				t.Errorf("NextLotCode(%q, %q) = %q, want %q", tt.prefix, tt.highest, got, tt.want)
			}
		})
	}
}

func TestLotCodeSequence(t *testing.T) {
	if got := LotCodeSequence("LOT-2603", "LOT-2604001"); got != 0 {
		t.Errorf("foreign prefix should yield 0, got %d", got)
	}
	if got := LotCodeSequence("LOT-2603", "LOT-2603042"); got != 42 {
		t.Errorf("LotCodeSequence = %d, want 42", got)
	}
}
