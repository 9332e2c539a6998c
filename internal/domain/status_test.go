package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to LotStatus
		want     bool
	}{
		{StatusConfirmed, StatusReceived, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusConfined, false},
		{StatusReceived, StatusConfined, true},
		{StatusReceived, StatusConfirmed, false},
		{StatusConfined, StatusSold, true},
		{StatusConfined, StatusReceived, false},
		{StatusSold, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []LotStatus{StatusConfirmed, StatusReceived, StatusConfined} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []LotStatus{StatusSold, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestParseLotStatus(t *testing.T) {
	if s, ok := ParseLotStatus("confined"); !ok || s != StatusConfined {
		t.Errorf("ParseLotStatus(confined) = %v, %v", s, ok)
	}
	if s, ok := ParseLotStatus("  SOLD "); !ok || s != StatusSold {
		t.Errorf("ParseLotStatus(SOLD) = %v, %v", s, ok)
	}
	if _, ok := ParseLotStatus("shipped"); ok {
		t.Error("ParseLotStatus(shipped) should fail")
	}
}
