package roster

import (
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
)

// evalContext bundles everything the hard filters need to judge a
// tentative (date, doctor) pair. It is rebuilt fresh for every trial —
// no hidden global accumulators (spec §9).
type evalContext struct {
	doctor       Doctor
	date         time.Time
	periodStart  time.Time
	prefs        *preference.Table
	schedule     Roster
	stats        Stats
	weekly       weeklyCounts
	targetLimits map[string]int
	previousTail string // who was on call the day before dates[0], if any
}

// evaluateHardFilters runs the seven hard filters from spec §4.4 in order
// and returns the first one that rejects the pair, or ok=true if every
// filter passes.
func evaluateHardFilters(c evalContext) (ok bool, reason RejectReason) {
	doc := c.doctor.Name

	// 1. Limit. A doctor absent from targetLimits reads as a zero limit,
	// matching original_source/app.py's `target_limits.get(doc, 0)` — the
	// limit calculator is expected to supply an explicit entry for every
	// ROTATION doctor who should be eligible at all.
	if c.stats[doc].Total >= c.targetLimits[doc] {
		return false, ReasonLimit
	}

	// 2. Unavailable.
	if c.prefs.IsUnavailable(c.date, doc) {
		return false, ReasonUnavailable
	}

	// 3. Rest-after: assigned the day before (or the previous-period tail
	// on the period's first date).
	prevDate := c.date.AddDate(0, 0, -1)
	if prevDate.Before(c.periodStart) {
		if c.previousTail == doc {
			return false, ReasonRestAfter
		}
	} else if c.schedule[prevDate] == doc {
		return false, ReasonRestAfter
	}

	// 4. Rest-before: already assigned the day after (populated by Phase I
	// or an earlier Phase II decision on a later date).
	nextDate := c.date.AddDate(0, 0, 1)
	if c.schedule[nextDate] == doc {
		return false, ReasonRestBefore
	}

	// 5. Pre-leave: a scheduled absence starts the day after this on-call.
	if next, ok := c.prefs.Get(nextDate, doc); ok && next.Status == preference.Unavailable &&
		(next.Reason == preference.Urlop || next.Reason == preference.Kurs) {
		return false, ReasonPreLeave
	}

	// 6. Weekly cap — frozen to apply to every ROTATION doctor (see
	// DESIGN.md for the Open Question decision), matching
	// original_source/app.py's unconditional weekly_counts check.
	week := calendar.WeekKey(c.date, c.periodStart)
	if c.weekly.count(week, doc) >= 2 {
		return false, ReasonWeeklyCap
	}

	// 7. Saturday rule: a Monday is forbidden to a saturday_rule doctor
	// who was on call the previous Saturday.
	if c.date.Weekday() == time.Monday && c.doctor.SaturdayRule {
		lastSaturday := c.date.AddDate(0, 0, -2)
		if c.schedule[lastSaturday] == doc {
			return false, ReasonSaturdayRule
		}
	}

	return true, ""
}
