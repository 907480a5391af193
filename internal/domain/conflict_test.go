package domain

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, time.March, 1, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps_Symmetric(t *testing.T) {
	type span struct{ s, e time.Time }
	spans := []span{
		{at(9, 0), at(10, 0)},
		{at(9, 30), at(10, 30)},
		{at(10, 0), at(11, 0)},
		{at(8, 0), at(12, 0)},
		{at(9, 15), at(9, 45)},
		{at(11, 0), at(11, 15)},
	}

	for _, a := range spans {
		for _, b := range spans {
			ab := Overlaps(a.s, a.e, b.s, b.e)
			ba := Overlaps(b.s, b.e, a.s, a.e)
			if ab != ba {
				t.Fatalf("overlap not symmetric for [%v,%v) and [%v,%v): %v vs %v", a.s, a.e, b.s, b.e, ab, ba)
			}
		}
	}
}

func TestHasConflict(t *testing.T) {
	existing := []Appointment{
		{ID: 1, Start: at(10, 0), End: at(11, 0)},
		{ID: 2, Start: at(13, 0), End: at(14, 0)},
	}

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		excludeID int64
		want      bool
	}{
		{name: "touching end", start: at(11, 0), end: at(12, 0), want: false},
		{name: "touching start", start: at(9, 0), end: at(10, 0), want: false},
		{name: "partial overlap", start: at(10, 30), end: at(11, 30), want: true},
		{name: "contained", start: at(13, 15), end: at(13, 45), want: true},
		{name: "containing", start: at(9, 0), end: at(15, 0), want: true},
		{name: "identical", start: at(10, 0), end: at(11, 0), want: true},
		{name: "between", start: at(11, 0), end: at(13, 0), want: false},
		{name: "excluded self", start: at(10, 0), end: at(11, 0), excludeID: 1, want: false},
		{name: "excluded other still conflicts", start: at(10, 0), end: at(11, 0), excludeID: 2, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(tt.start, tt.end, existing, tt.excludeID); got != tt.want {
				t.Fatalf("HasConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstConflict_ReturnsFirstInInputOrder(t *testing.T) {
	existing := []Appointment{
		{ID: 5, Start: at(12, 0), End: at(13, 0)},
		{ID: 3, Start: at(9, 0), End: at(10, 0)},
	}

	got, ok := FirstConflict(at(9, 30), at(12, 30), existing, 0)
	if !ok {
		t.Fatalf("expected conflict")
	}
	if got.ID != 5 {
		t.Fatalf("conflict id = %d, want 5", got.ID)
	}

	if _, ok := FirstConflict(at(9, 30), at(12, 30), nil, 0); ok {
		t.Fatalf("expected no conflict against empty list")
	}
}
