package roster

import (
	"math/rand"
	"sort"
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
)

// candidate is a ROTATION doctor who survived the hard filters for a
// given date, carrying the fields the sort key in spec §4.3 needs.
type candidate struct {
	doctor         string
	weight         int
	sameGroupCount int
	totalCount     int
	epsilon        float64
}

// weightFor returns the preference weight used to order candidates.
// Frozen calibration (see DESIGN.md): AVAILABLE → 10, RELUCTANT → 1, no
// record on the date → 1 — matching original_source/app.py's
// `w = 10 if status == AVAILABLE else 1`, where a missing record falls
// through the else branch rather than defaulting to "available".
func weightFor(prefs *preference.Table, date time.Time, doctor string) int {
	if rec, ok := prefs.Get(date, doctor); ok && rec.Status == preference.Available {
		return 10
	}
	return 1
}

// buildCandidates evaluates every ROTATION doctor against the hard
// filters for date and returns the survivors plus the rejection reason
// for everyone else.
func buildCandidates(team Team, c evalContext, group calendar.DayGroup, rng *rand.Rand) ([]candidate, map[string]RejectReason) {
	rejections := make(map[string]RejectReason)
	var candidates []candidate

	for _, doc := range team.Rotation {
		ctx := c
		ctx.doctor = doc
		ok, reason := evaluateHardFilters(ctx)
		if !ok {
			rejections[doc.Name] = reason
			continue
		}
		candidates = append(candidates, candidate{
			doctor:         doc.Name,
			weight:         weightFor(c.prefs, c.date, doc.Name),
			sameGroupCount: c.stats[doc.Name].Group[group],
			totalCount:     c.stats[doc.Name].Total,
			epsilon:        rng.Float64(),
		})
	}
	return candidates, rejections
}

// pickCandidate sorts candidates by the spec §4.3 key —
// (-weight, sameGroupCount, totalCount, epsilon) — and returns the winner.
// Callers must not call this with an empty slice.
func pickCandidate(candidates []candidate) string {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		if a.sameGroupCount != b.sameGroupCount {
			return a.sameGroupCount < b.sameGroupCount
		}
		if a.totalCount != b.totalCount {
			return a.totalCount < b.totalCount
		}
		return a.epsilon < b.epsilon
	})
	return candidates[0].doctor
}

// availabilityCount returns the number of ROTATION doctors who are not
// UNAVAILABLE on date — used to sort unresolved days hardest-first.
func availabilityCount(team Team, prefs *preference.Table, date time.Time) int {
	n := 0
	for _, doc := range team.Rotation {
		if !prefs.IsUnavailable(date, doc.Name) {
			n++
		}
	}
	return n
}
