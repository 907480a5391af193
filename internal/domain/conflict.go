package domain

import "time"

// Overlaps applies the half-open rule: [s1,e1) and [s2,e2) overlap iff
// s1 < e2 and e1 > s2. Touching endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// FirstConflict scans existing in input order and returns the first appointment
// overlapping [start, end). An appointment whose ID equals excludeID is skipped;
// excludeID 0 skips nothing.
func FirstConflict(start, end time.Time, existing []Appointment, excludeID int64) (Appointment, bool) {
	for _, a := range existing {
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		if Overlaps(start, end, a.Start, a.End) {
			return a, true
		}
	}
	return Appointment{}, false
}

func HasConflict(start, end time.Time, existing []Appointment, excludeID int64) bool {
	_, ok := FirstConflict(start, end, existing, excludeID)
	return ok
}
