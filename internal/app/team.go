package app

import "github.com/filippietrz/grafik-urologia/pkg/roster"

// DefaultTeam returns the urology team's roster, ported verbatim from
// original_source/app.py's FIXED_DOCTORS/ROTATION_DOCTORS/
// NO_OPTOUT_DOCTORS/SATURDAY_RULE_DOCTORS constants. Canonical order
// matters: it is the FIXED tie-break order (spec §4.3 phase I) and it
// determines the senior FIXED doctor excluded from the daily-timetable
// matrix (spec §4.5) — "Jakub Sz." is first, matching the original.
func DefaultTeam() roster.Team {
	saturdayRule := map[string]bool{"Daniel": true, "Kacper": true}
	noOptout := map[string]bool{"Jędrzej": true, "Filip": true, "Ihab": true, "Jakub": true, "Tymoteusz": true}

	fixedNames := []string{"Jakub Sz.", "Gerard", "Tomasz", "Rafał", "Marcin", "Weronika", "Daniel"}
	rotationNames := []string{"Jędrzej", "Filip", "Ihab", "Kacper", "Jakub", "Tymoteusz"}

	team := roster.Team{}
	for _, name := range fixedNames {
		team.Fixed = append(team.Fixed, roster.Doctor{
			Name:         name,
			Role:         roster.RoleFixed,
			SaturdayRule: saturdayRule[name],
		})
	}
	for _, name := range rotationNames {
		team.Rotation = append(team.Rotation, roster.Doctor{
			Name:         name,
			Role:         roster.RoleRotation,
			NoOptout:     noOptout[name],
			SaturdayRule: saturdayRule[name],
		})
	}
	return team
}
