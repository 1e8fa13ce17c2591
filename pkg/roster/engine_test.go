package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/filippietrz/grafik-urologia/pkg/calendar"
	"github.com/filippietrz/grafik-urologia/pkg/preference"
)

func sixDoctorTeam() Team {
	names := []string{"Jędrzej", "Filip", "Ihab", "Kacper", "Jakub", "Tymoteusz"}
	team := Team{}
	for _, n := range names {
		team.Rotation = append(team.Rotation, Doctor{Name: n, Role: RoleRotation, NoOptout: true})
	}
	return team
}

func allAvailable(dates []time.Time, names []string) *preference.Table {
	var records []preference.Record
	for _, dt := range dates {
		for _, n := range names {
			records = append(records, preference.Record{Date: dt, Doctor: n, Status: preference.Available})
		}
	}
	return preference.Project(records)
}

// S1 — all-available, no fixed.
func TestGenerate_S1_AllAvailableNoFixed(t *testing.T) {
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	team := sixDoctorTeam()
	prefs := allAvailable(dates, team.RotationNames())
	targets := map[string]int{
		"Jędrzej": 10, "Filip": 10, "Ihab": 10, "Kacper": 10, "Jakub": 10, "Tymoteusz": 9,
	}

	out, err := Generate(context.Background(), GenerateInput{
		Dates:        dates,
		PeriodStart:  calendar.PeriodStart(2026, time.January),
		Team:         team,
		Prefs:        prefs,
		TargetLimits: targets,
		Trials:       50,
		Seed:         1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got, want := out.Roster.FilledCount(), len(dates); got != want {
		t.Fatalf("filled count = %d, want %d", got, want)
	}
	for doc, want := range targets {
		if got := out.Stats[doc].Total; got != want {
			t.Errorf("doctor %s total = %d, want %d", doc, got, want)
		}
	}
	assertUniversalInvariants(t, dates, out, team, prefs, targets, "")
}

// S2 — tail collision.
func TestGenerate_S2_TailCollision(t *testing.T) {
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	team := sixDoctorTeam()
	prefs := allAvailable(dates, team.RotationNames())
	targets := map[string]int{
		"Jędrzej": 10, "Filip": 10, "Ihab": 10, "Kacper": 10, "Jakub": 10, "Tymoteusz": 9,
	}

	out, err := Generate(context.Background(), GenerateInput{
		Dates:        dates,
		PeriodStart:  calendar.PeriodStart(2026, time.January),
		Team:         team,
		Prefs:        prefs,
		TargetLimits: targets,
		PreviousTail: "Filip",
		Trials:       50,
		Seed:         1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if out.Roster[dates[0]] == "Filip" {
		t.Fatalf("roster[Jan 1] = Filip, rest-after must forbid it")
	}
}

// S3 — FIXED sweep.
func TestGenerate_S3_FixedSweep(t *testing.T) {
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	team := sixDoctorTeam()
	team.Fixed = []Doctor{{Name: "Jakub Sz.", Role: RoleFixed}}

	fixedDates := dates[:15]
	var records []preference.Record
	for _, dt := range fixedDates {
		records = append(records, preference.Record{Date: dt, Doctor: "Jakub Sz.", Status: preference.Fixed})
	}
	for _, dt := range dates {
		for _, n := range team.RotationNames() {
			records = append(records, preference.Record{Date: dt, Doctor: n, Status: preference.Available})
		}
	}
	prefs := preference.Project(records)

	targets := map[string]int{
		"Jędrzej": 9, "Filip": 9, "Ihab": 9, "Kacper": 9, "Jakub": 9, "Tymoteusz": 9,
	}

	out, err := Generate(context.Background(), GenerateInput{
		Dates:        dates,
		PeriodStart:  calendar.PeriodStart(2026, time.January),
		Team:         team,
		Prefs:        prefs,
		TargetLimits: targets,
		Trials:       50,
		Seed:         2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, dt := range fixedDates {
		if out.Roster[dt] != "Jakub Sz." {
			t.Errorf("roster[%s] = %q, want Jakub Sz.", dt.Format("2006-01-02"), out.Roster[dt])
		}
	}
	if got := out.Stats["Jakub Sz."].Total; got != 15 {
		t.Errorf("Jakub Sz. total = %d, want 15", got)
	}
	if len(out.DeniedFixed) != 0 {
		t.Errorf("denied_fixed_list = %v, want empty", out.DeniedFixed)
	}
}

// S4 — FIXED conflict.
func TestGenerate_S4_FixedConflict(t *testing.T) {
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	team := sixDoctorTeam()
	team.Fixed = []Doctor{
		{Name: "Jakub Sz.", Role: RoleFixed},
		{Name: "Jędrzej B.", Role: RoleFixed},
	}

	conflictDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []preference.Record{
		{Date: conflictDate, Doctor: "Jakub Sz.", Status: preference.Fixed},
		{Date: conflictDate, Doctor: "Jędrzej B.", Status: preference.Fixed},
	}
	for _, dt := range dates {
		for _, n := range team.RotationNames() {
			records = append(records, preference.Record{Date: dt, Doctor: n, Status: preference.Available})
		}
	}
	prefs := preference.Project(records)

	out, err := Generate(context.Background(), GenerateInput{
		Dates:       dates,
		PeriodStart: calendar.PeriodStart(2026, time.January),
		Team:        team,
		Prefs:       prefs,
		TargetLimits: map[string]int{
			"Jędrzej": 10, "Filip": 10, "Ihab": 10, "Kacper": 10, "Jakub": 10, "Tymoteusz": 9,
		},
		Trials: 50,
		Seed:   3,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	winner := out.Roster[conflictDate]
	if winner != "Jakub Sz." {
		t.Fatalf("roster[conflict date] = %q, want deterministic winner Jakub Sz. (canonical order)", winner)
	}
	found := false
	for _, dc := range out.DeniedFixed {
		if dc.Doctor == "Jędrzej B." && dc.Date.Equal(conflictDate) {
			found = true
			if dc.Winner != "Jakub Sz." {
				t.Errorf("denied reason winner = %q, want Jakub Sz.", dc.Winner)
			}
		}
	}
	if !found {
		t.Fatalf("denied_fixed_list missing entry for Jędrzej B.: %v", out.DeniedFixed)
	}
}

// S5 — infeasibility.
func TestGenerate_S5_Infeasibility(t *testing.T) {
	dates, err := calendar.PeriodDates(2026, time.January)
	if err != nil {
		t.Fatal(err)
	}
	team := sixDoctorTeam()

	blackout := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	var records []preference.Record
	for _, dt := range dates {
		for _, n := range team.RotationNames() {
			status := preference.Available
			if dt.Equal(blackout) {
				status = preference.Unavailable
			}
			records = append(records, preference.Record{Date: dt, Doctor: n, Status: status})
		}
	}
	prefs := preference.Project(records)

	out, err := Generate(context.Background(), GenerateInput{
		Dates:       dates,
		PeriodStart: calendar.PeriodStart(2026, time.January),
		Team:        team,
		Prefs:       prefs,
		TargetLimits: map[string]int{
			"Jędrzej": 10, "Filip": 10, "Ihab": 10, "Kacper": 10, "Jakub": 10, "Tymoteusz": 9,
		},
		Trials: 50,
		Seed:   4,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if out.Roster[blackout] != Unfilled {
		t.Fatalf("roster[%s] = %q, want UNFILLED", blackout.Format("2006-01-02"), out.Roster[blackout])
	}
	rej, ok := out.RejectionReasons[blackout]
	if !ok {
		t.Fatalf("no rejection reasons recorded for %s", blackout.Format("2006-01-02"))
	}
	for _, n := range team.RotationNames() {
		if rej[n] != ReasonUnavailable {
			t.Errorf("rejection reason for %s = %v, want %v", n, rej[n], ReasonUnavailable)
		}
	}

	filled := 0
	for _, dt := range dates {
		if out.Roster[dt] != Unfilled {
			filled++
		}
	}
	if filled != len(dates)-1 {
		t.Errorf("filled = %d, want %d (only the blackout day unfilled)", filled, len(dates)-1)
	}
}

func TestGenerate_RejectsInvalidInput(t *testing.T) {
	team := sixDoctorTeam()

	t.Run("non-contiguous dates", func(t *testing.T) {
		dates := []time.Time{
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		}
		_, err := Generate(context.Background(), GenerateInput{
			Dates: dates, Team: team, Prefs: preference.Project(nil),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("unknown doctor in target_limits", func(t *testing.T) {
		dates := []time.Time{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		_, err := Generate(context.Background(), GenerateInput{
			Dates:        dates,
			Team:         team,
			Prefs:        preference.Project(nil),
			TargetLimits: map[string]int{"Nobody": 1},
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})
}

// assertUniversalInvariants checks spec properties 1-7 against a generated roster.
func assertUniversalInvariants(t *testing.T, dates []time.Time, out GenerateOutput, team Team, prefs *preference.Table, targets map[string]int, previousTail string) {
	t.Helper()

	// 1. One-per-day.
	for _, dt := range dates {
		if _, ok := out.Roster[dt]; !ok {
			t.Errorf("date %s missing from roster", dt.Format("2006-01-02"))
		}
	}

	for i, dt := range dates {
		doc := out.Roster[dt]
		if doc == Unfilled {
			continue
		}

		// 2. No back-to-back.
		if i+1 < len(dates) {
			if out.Roster[dates[i+1]] == doc {
				t.Errorf("back-to-back: %s assigned %s and %s", doc, dt.Format("2006-01-02"), dates[i+1].Format("2006-01-02"))
			}
		}

		// 3. Availability.
		if prefs.IsUnavailable(dt, doc) {
			t.Errorf("%s assigned on %s despite UNAVAILABLE", doc, dt.Format("2006-01-02"))
		}

		// 7. Pre-leave.
		next := dt.AddDate(0, 0, 1)
		if rec, ok := prefs.Get(next, doc); ok && rec.Status == preference.Unavailable &&
			(rec.Reason == preference.Urlop || rec.Reason == preference.Kurs) {
			t.Errorf("%s assigned on %s immediately before a scheduled absence", doc, dt.Format("2006-01-02"))
		}
	}

	// 5. Target.
	for doc, limit := range targets {
		if out.Stats[doc].Total > limit {
			t.Errorf("%s total %d exceeds target %d", doc, out.Stats[doc].Total, limit)
		}
	}

	// 4 & 6: weekly cap and Saturday rule, checked per doctor.
	periodStart := dates[0]
	weekly := weeklyCounts{}
	for _, dt := range dates {
		doc := out.Roster[dt]
		if doc == Unfilled {
			continue
		}
		weekly.record(calendar.WeekKey(dt, periodStart), doc)
	}
	for _, doc := range team.Rotation {
		if !doc.NoOptout {
			continue
		}
		for week, counts := range weekly {
			if counts[doc.Name] > 2 {
				t.Errorf("%s exceeds weekly cap in week %d: %d", doc.Name, week, counts[doc.Name])
			}
		}
	}
	for _, doc := range team.Rotation {
		if !doc.SaturdayRule {
			continue
		}
		for _, dt := range dates {
			if dt.Weekday() != time.Saturday || out.Roster[dt] != doc.Name {
				continue
			}
			monday := dt.AddDate(0, 0, 2)
			if out.Roster[monday] == doc.Name {
				t.Errorf("%s on call Saturday %s and following Monday", doc.Name, dt.Format("2006-01-02"))
			}
		}
	}
}
