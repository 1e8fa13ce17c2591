package timetable

import (
	"testing"
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
	"github.com/filippietrz/grafik-urologia/pkg/roster"
)

func week(start time.Time) []time.Time {
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// S6 — hour cap bite. Ihab on call Monday and Wednesday of one week.
func TestGenerate_S6_HourCapBite(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday
	dates := week(monday)
	periodStart := monday

	team := roster.Team{
		Rotation: []roster.Doctor{
			{Name: "Ihab", Role: roster.RoleRotation, NoOptout: true},
		},
	}

	r := roster.Roster{
		dates[0]: "Ihab", // Monday
		dates[2]: "Ihab", // Wednesday
	}

	prefs := preference.Project(nil)

	matrix := Generate(GenerateInput{
		Dates:       dates,
		PeriodStart: periodStart,
		Roster:      r,
		Team:        team,
		Prefs:       prefs,
	})

	standardDays := 0
	capOffDays := 0
	for _, d := range dates {
		cell := matrix[d]["Ihab"]
		switch cell {
		case OnCall24h, PostCallOff:
			// Monday, Tuesday, Wednesday, Thursday are consumed by on-call/post-call.
		case StandardDay:
			standardDays++
		case CapOff:
			capOffDays++
		case WeekendOff:
			// weekend, fine
		default:
			t.Errorf("unexpected cell %v for Ihab on %s", cell, d.Format("2006-01-02"))
		}
	}

	if standardDays != 0 {
		t.Errorf("STANDARD_DAY count for Ihab = %d, want 0 (48 - 2*24 = 0 remaining)", standardDays)
	}
	// Friday is the only remaining weekday candidate (Mon/Wed on-call,
	// Tue/Thu post-call-off, Sat/Sun red); it must be forced CAP_OFF.
	if capOffDays != 1 {
		t.Errorf("CAP_OFF count for Ihab = %d, want 1", capOffDays)
	}
}

// Property 9 — determinism: same roster + preferences => identical output.
func TestGenerate_Deterministic(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	dates := append(week(monday), week(monday.AddDate(0, 0, 7))...)
	team := roster.Team{
		Fixed: []roster.Doctor{{Name: "Jakub Sz.", Role: roster.RoleFixed}},
		Rotation: []roster.Doctor{
			{Name: "Ihab", Role: roster.RoleRotation, NoOptout: true},
			{Name: "Filip", Role: roster.RoleRotation},
		},
	}
	r := roster.Roster{
		dates[0]: "Ihab",
		dates[3]: "Filip",
		dates[9]: "Ihab",
	}
	prefs := preference.Project([]preference.Record{
		{Date: dates[5], Doctor: "Filip", Status: preference.Unavailable, Reason: preference.Urlop},
	})

	in := GenerateInput{Dates: dates, PeriodStart: monday, Roster: r, Team: team, Prefs: prefs}

	m1 := Generate(in)
	m2 := Generate(in)

	for _, d := range dates {
		for name := range m1[d] {
			if m1[d][name] != m2[d][name] {
				t.Fatalf("non-deterministic output at %s/%s: %v vs %v", d.Format("2006-01-02"), name, m1[d][name], m2[d][name])
			}
		}
	}
}

func TestGenerate_ExcludesSeniorFixed(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	dates := week(monday)
	team := roster.Team{
		Fixed: []roster.Doctor{
			{Name: "Jakub Sz.", Role: roster.RoleFixed},
			{Name: "Jędrzej B.", Role: roster.RoleFixed},
		},
		Rotation: []roster.Doctor{{Name: "Ihab", Role: roster.RoleRotation}},
	}
	matrix := Generate(GenerateInput{
		Dates: dates, PeriodStart: monday, Roster: roster.Roster{}, Team: team, Prefs: preference.Project(nil),
	})
	for _, d := range dates {
		if _, ok := matrix[d]["Jakub Sz."]; ok {
			t.Errorf("senior FIXED doctor Jakub Sz. must be excluded from the matrix")
		}
		if _, ok := matrix[d]["Jędrzej B."]; !ok {
			t.Errorf("non-senior FIXED doctor Jędrzej B. must still appear in the matrix")
		}
	}
}

// Property 10 — hour cap: 24*on_call + norm*(standard+leave+course) <= 48 per week.
func TestGenerate_HourCapInvariant(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	dates := week(monday)
	team := roster.Team{Rotation: []roster.Doctor{{Name: "Ihab", Role: roster.RoleRotation, NoOptout: true}}}
	r := roster.Roster{dates[0]: "Ihab", dates[3]: "Ihab"}
	matrix := Generate(GenerateInput{Dates: dates, PeriodStart: monday, Roster: r, Team: team, Prefs: preference.Project(nil)})

	var hours float64
	for _, d := range dates {
		switch matrix[d]["Ihab"] {
		case OnCall24h:
			hours += 24
		case StandardDay, Leave, Course:
			hours += dailyNormHours
		}
	}
	if hours > weeklyCapHours {
		t.Errorf("Ihab's week totals %.2f hours, want <= %.2f", hours, weeklyCapHours)
	}
}

func TestWeekGrouping(t *testing.T) {
	periodStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // a Thursday
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	weeks := groupByWeek(dates, periodStart)
	total := 0
	for _, w := range weeks {
		total += len(w)
	}
	if total != len(dates) {
		t.Fatalf("grouped %d dates across weeks, want %d", total, len(dates))
	}
}
