package roster

import (
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
)

// Unfilled is the sentinel doctor name used when no eligible doctor could
// be found for a date.
const Unfilled = ""

// Roster is a total mapping from each date in the period to exactly one
// doctor name, or to Unfilled.
type Roster map[time.Time]string

// IsFilled reports whether date has an assigned doctor.
func (r Roster) IsFilled(date time.Time) bool {
	return r[date] != Unfilled
}

// FilledCount returns the number of dates with a non-Unfilled assignment.
func (r Roster) FilledCount() int {
	n := 0
	for _, doc := range r {
		if doc != Unfilled {
			n++
		}
	}
	return n
}

// DoctorStats holds the per-doctor counters derived from a roster: the
// total on-call count and one counter per fairness day-group.
type DoctorStats struct {
	Total int
	Group map[calendar.DayGroup]int
}

func newDoctorStats() DoctorStats {
	return DoctorStats{Group: make(map[calendar.DayGroup]int, len(calendar.AllDayGroups))}
}

// Stats maps doctor name to their counters, for every doctor in scope
// (both roles).
type Stats map[string]DoctorStats

func newStats(team Team) Stats {
	s := make(Stats, len(team.Fixed)+len(team.Rotation))
	for _, d := range team.All() {
		s[d.Name] = newDoctorStats()
	}
	return s
}

// record updates stats in place after assigning doc to date.
func (s Stats) record(doc string, date time.Time) {
	ds := s[doc]
	ds.Total++
	group := calendar.GroupOf(date)
	if ds.Group == nil {
		ds.Group = make(map[calendar.DayGroup]int)
	}
	ds.Group[group]++
	s[doc] = ds
}

// weeklyCounts tracks on-call counts per (week key, doctor), used by the
// weekly-cap hard filter.
type weeklyCounts map[int]map[string]int

func (w weeklyCounts) record(week int, doc string) {
	if w[week] == nil {
		w[week] = make(map[string]int)
	}
	w[week][doc]++
}

func (w weeklyCounts) count(week int, doc string) int {
	return w[week][doc]
}

// RejectReason is the short diagnostic tag recorded for every doctor
// rejected from a candidate list, so the surrounding tool can explain an
// UNFILLED day.
type RejectReason string

const (
	ReasonLimit        RejectReason = "Limit"
	ReasonUnavailable  RejectReason = "ND"
	ReasonRestAfter    RejectReason = "Po"
	ReasonRestBefore   RejectReason = "Przed"
	ReasonWeeklyCap    RejectReason = "Max2"
	ReasonSaturdayRule RejectReason = "Sobota"
	ReasonPreLeave     RejectReason = "PrzedUrlopem"
)

// DeniedFixedClaim records a doctor whose FIXED claim lost to another
// doctor's claim on the same date (spec §4.3 phase I, §7 FixedConflict).
type DeniedFixedClaim struct {
	Date    time.Time
	Doctor  string
	Winner  string
	Reason  string
}
