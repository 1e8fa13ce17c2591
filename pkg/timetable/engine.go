package timetable

import (
	"sort"
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
	"github.com/filippietrz/grafik-urologia/pkg/roster"
)

// GenerateInput is the daily-timetable engine's input contract (spec §4.5).
type GenerateInput struct {
	Dates        []time.Time
	PeriodStart  time.Time
	Roster       roster.Roster
	Team         roster.Team
	Prefs        *preference.Table
	PreviousTail string
}

// Matrix is a dense {date -> {doctor -> cell}} table for every doctor
// except the single senior-FIXED doctor excluded by policy.
type Matrix map[time.Time]map[string]DailyCell

// Generate walks in.Dates week by week running Pass A (rule-driven
// labels), Pass B (48-hour cap) and Pass C (opt-out fill), exactly as
// spec §4.5 describes. It never returns an error: a malformed roster or
// preference table simply produces a degenerate matrix, because by the
// time a roster reaches this engine it has already been validated by
// pkg/roster.Generate.
func Generate(in GenerateInput) Matrix {
	doctors := timetableDoctors(in.Team)
	matrix := make(Matrix, len(in.Dates))
	for _, d := range in.Dates {
		matrix[d] = make(map[string]DailyCell, len(doctors))
	}

	for _, week := range groupByWeek(in.Dates, in.PeriodStart) {
		runWeek(in, week, doctors, matrix)
	}

	return matrix
}

// timetableDoctors returns every doctor in canonical order except the
// senior FIXED doctor (spec §4.5).
func timetableDoctors(team roster.Team) []roster.Doctor {
	senior, hasSenior := team.SeniorFixed()
	var out []roster.Doctor
	for _, d := range team.All() {
		if hasSenior && d.Name == senior.Name {
			continue
		}
		out = append(out, d)
	}
	return out
}

func groupByWeek(dates []time.Time, periodStart time.Time) [][]time.Time {
	var weeks [][]time.Time
	var current []time.Time
	currentKey := -1
	for _, d := range dates {
		key := calendar.WeekKey(d, periodStart)
		if key != currentKey {
			if current != nil {
				weeks = append(weeks, current)
			}
			current = nil
			currentKey = key
		}
		current = append(current, d)
	}
	if current != nil {
		weeks = append(weeks, current)
	}
	return weeks
}

// runWeek runs Pass A, B and C for a single week's dates and writes the
// results directly into matrix.
func runWeek(in GenerateInput, week []time.Time, doctors []roster.Doctor, matrix Matrix) {
	shiftHours := make(map[string]float64, len(doctors))
	for _, doc := range doctors {
		shiftHours[doc.Name] = 0
	}
	dailyStaffCount := make(map[time.Time]int, len(week))

	runPassA(in, week, doctors, matrix, shiftHours)

	for _, d := range week {
		count := 0
		for _, doc := range doctors {
			if matrix[d][doc.Name] == unassigned {
				count++
			}
		}
		dailyStaffCount[d] = count
	}

	runPassB(week, doctors, matrix, shiftHours, dailyStaffCount)
	runPassC(week, doctors, matrix)
}

// runPassA assigns the rule-driven labels described in spec §4.5.
func runPassA(in GenerateInput, week []time.Time, doctors []roster.Doctor, matrix Matrix, shiftHours map[string]float64) {
	for _, d := range week {
		prevDate := d.AddDate(0, 0, -1)
		isRed := calendar.IsRedDay(d)

		for _, doc := range doctors {
			name := doc.Name

			if rec, ok := in.Prefs.Get(d, name); ok && rec.Status == preference.Unavailable &&
				(rec.Reason == preference.Urlop || rec.Reason == preference.Kurs) {
				if rec.Reason == preference.Urlop {
					matrix[d][name] = Leave
				} else {
					matrix[d][name] = Course
				}
				shiftHours[name] += dailyNormHours
				continue
			}

			if in.Roster[d] == name {
				matrix[d][name] = OnCall24h
				shiftHours[name] += 24.0
				continue
			}

			wasOnCallPrevDay := false
			if prevDate.Before(in.PeriodStart) {
				wasOnCallPrevDay = in.PreviousTail == name
			} else {
				wasOnCallPrevDay = in.Roster[prevDate] == name
			}
			if wasOnCallPrevDay {
				matrix[d][name] = PostCallOff
				continue
			}

			if isRed {
				matrix[d][name] = WeekendOff
				continue
			}

			if doc.SaturdayRule && d.Weekday() == time.Monday {
				lastSaturday := d.AddDate(0, 0, -2)
				if in.Roster[lastSaturday] == name {
					matrix[d][name] = SatRuleOff
					continue
				}
			}

			matrix[d][name] = unassigned
		}
	}
}

// runPassB enforces the 48-hour weekly cap for every no_optout doctor.
func runPassB(week []time.Time, doctors []roster.Doctor, matrix Matrix, shiftHours map[string]float64, dailyStaffCount map[time.Time]int) {
	for _, doc := range doctors {
		if !doc.NoOptout {
			continue
		}
		name := doc.Name

		remaining := weeklyCapHours - shiftHours[name]
		maxWorkDays := int(remaining / dailyNormHours)
		if maxWorkDays < 0 {
			maxWorkDays = 0
		}

		var candidates []time.Time
		for _, d := range week {
			if matrix[d][name] == unassigned {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) <= maxWorkDays {
			for _, d := range candidates {
				matrix[d][name] = StandardDay
			}
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return dailyStaffCount[candidates[i]] > dailyStaffCount[candidates[j]]
		})

		numToDrop := len(candidates) - maxWorkDays
		for _, d := range candidates[:numToDrop] {
			matrix[d][name] = CapOff
			dailyStaffCount[d]--
		}
		for _, d := range candidates[numToDrop:] {
			matrix[d][name] = StandardDay
		}
	}
}

// runPassC fills every remaining unassigned cell with STANDARD_DAY.
func runPassC(week []time.Time, doctors []roster.Doctor, matrix Matrix) {
	for _, d := range week {
		for _, doc := range doctors {
			if matrix[d][doc.Name] == unassigned {
				matrix[d][doc.Name] = StandardDay
			}
		}
	}
}
