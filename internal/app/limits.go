package app

import "github.com/filippietrz/grafik-urologia/pkg/roster"

// SuggestLimits computes the target_limits suggestion described in
// spec §4.6, ported from original_source/app.py's tab2 sidebar logic:
// every FIXED-role doctor's limit is their own declared-FIXED day count;
// the remaining pool (total days minus every declared-FIXED day, FIXED or
// ROTATION role alike) is split evenly across ROTATION doctors by floor
// division — any remainder from the division is simply not allocated,
// matching the original's unrounded `pool // ts`.
//
// The engine treats whatever target_limits it is actually given as
// authoritative; this function is advisory only, for the surrounding tool
// to pre-fill before a human adjusts it.
func SuggestLimits(totalDays int, fixedDayCounts map[string]int, team roster.Team) map[string]int {
	limits := make(map[string]int, len(team.Fixed)+len(team.Rotation))

	sumFixed := 0
	for _, doc := range team.All() {
		sumFixed += fixedDayCounts[doc.Name]
	}
	for _, doc := range team.Fixed {
		limits[doc.Name] = fixedDayCounts[doc.Name]
	}

	pool := totalDays - sumFixed
	if pool < 0 {
		pool = 0
	}

	ts := len(team.Rotation)
	base := 0
	if ts > 0 {
		base = pool / ts
	}
	for _, doc := range team.Rotation {
		limits[doc.Name] = base
	}

	return limits
}
