package domain

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLotPurchaseValue(t *testing.T) {
	tests := []struct {
		name           string
		pricePerArroba float64
		purchaseWeight float64
		carcassYield   float64
		want           float64
	}{
		{
			// 45000 kg at 50% yield is 1500 arrobas of carcass.
			name:           "hundred head lot",
			pricePerArroba: 180,
			purchaseWeight: 45000,
			carcassYield:   50,
			want:           270000,
		},
		{
			name:           "higher yield raises value",
			pricePerArroba: 180,
			purchaseWeight: 45000,
			carcassYield:   54,
			want:           291600,
		},
		{
			name:           "single animal",
			pricePerArroba: 200,
			purchaseWeight: 450,
			carcassYield:   50,
			want:           3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LotPurchaseValue(tt.pricePerArroba, tt.purchaseWeight, tt.carcassYield)
			if !almostEqual(got, tt.want) {
				t.Errorf("LotPurchaseValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLotAverageWeight(t *testing.T) {
	if got := LotAverageWeight(45000, 100); !almostEqual(got, 450) {
		t.Errorf("LotAverageWeight(45000, 100) = %v, want 450", got)
	}
	if got := LotAverageWeight(45000, 0); got != 0 {
		t.Errorf("LotAverageWeight with zero quantity = %v, want 0", got)
	}
}

func TestProjectSlaughterDate(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		averageWeight float64
		targetWeight  float64
		expectedGMD   float64
		wantDays      int
		wantNil       bool
	}{
		{name: "exact division", averageWeight: 450, targetWeight: 550, expectedGMD: 1.0, wantDays: 100},
		{name: "partial day rounds up", averageWeight: 450, targetWeight: 550, expectedGMD: 1.5, wantDays: 67},
		{name: "zero gmd undefined", averageWeight: 450, targetWeight: 550, expectedGMD: 0, wantNil: true},
		{name: "already at target", averageWeight: 550, targetWeight: 550, expectedGMD: 1.0, wantNil: true},
		{name: "above target", averageWeight: 560, targetWeight: 550, expectedGMD: 1.0, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectSlaughterDate(from, tt.averageWeight, tt.targetWeight, tt.expectedGMD)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("ProjectSlaughterDate() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ProjectSlaughterDate() = nil, want a date")
			}
			want := from.AddDate(0, 0, tt.wantDays)
			if !got.Equal(want) {
				t.Errorf("ProjectSlaughterDate() = %v, want %v", got, want)
			}
		})
	}
}

func TestWeightBreak(t *testing.T) {
	loss, pct := WeightBreak(45000, 43200)
	if !almostEqual(loss, 1800) {
		t.Errorf("loss = %v, want 1800", loss)
	}
	if !almostEqual(pct, 4) {
		t.Errorf("pct = %v, want 4", pct)
	}

	loss, pct = WeightBreak(0, 100)
	if !almostEqual(loss, -100) || pct != 0 {
		t.Errorf("zero purchase weight: loss = %v, pct = %v", loss, pct)
	}
}

func TestDistributeEvenly(t *testing.T) {
	tests := []struct {
		name  string
		total int
		n     int
		want  []int
	}{
		{name: "exact split", total: 90, n: 3, want: []int{30, 30, 30}},
		{name: "remainder goes first", total: 95, n: 3, want: []int{32, 32, 31}},
		{name: "fewer head than pens", total: 2, n: 3, want: []int{1, 1, 0}},
		{name: "single pen", total: 95, n: 1, want: []int{95}},
		{name: "no pens", total: 95, n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistributeEvenly(tt.total, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("DistributeEvenly() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("DistributeEvenly() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(time.Date(2026, 3, 17, 14, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}

	// December rolls into the next year.
	start, end = MonthWindow(time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("december start = %v", start)
	}
	if !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("december end = %v", end)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(25, 100); !almostEqual(got, 25) {
		t.Errorf("Percentage(25, 100) = %v, want 25", got)
	}
	if got := Percentage(10, 0); got != 0 {
		t.Errorf("Percentage(10, 0) = %v, want 0", got)
	}
	if got := Percentage(10, -5); got != 0 {
		t.Errorf("Percentage(10, -5) = %v, want 0", got)
	}
}
