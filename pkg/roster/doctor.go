// Package roster implements the on-call assignment engine: a two-phase,
// randomized-heuristic scheduler that fills one doctor per day for a
// settlement period subject to preferences, per-doctor totals, weekly
// caps, rest windows, and day-of-week fairness.
package roster

// Role is the closed set of doctor roles. A FIXED doctor only serves
// self-declared fixed days and never enters the rotation draw; a
// ROTATION doctor is subject to the scored draw for any day not
// pre-claimed.
type Role int

const (
	RoleFixed Role = iota
	RoleRotation
)

func (r Role) String() string {
	if r == RoleFixed {
		return "FIXED"
	}
	return "ROTATION"
}

// Doctor describes one member of the team. Doctors are identified by their
// stable display Name; there is no separate numeric ID in this domain.
type Doctor struct {
	Name string
	Role Role

	// NoOptout subjects this doctor to the 48-hour weekly cap enforced by
	// the daily-timetable engine. It does not affect the weekly on-call cap
	// in this package's constraint evaluator, which (per the frozen
	// calibration in DESIGN.md) applies to every ROTATION doctor.
	NoOptout bool

	// SaturdayRule binds a Saturday on-call to a compensatory Monday off:
	// if this doctor is on call on a Saturday, the following Monday is
	// forbidden to them.
	SaturdayRule bool
}

// Team is the ordered roster of all doctors. Order matters: it is the
// canonical tie-break order used to resolve FIXED conflicts (spec §4.3
// phase I, rule 1) and to pick the "senior FIXED" doctor excluded from
// the daily-timetable matrix (spec §4.5).
type Team struct {
	Fixed    []Doctor
	Rotation []Doctor
}

// All returns every doctor, FIXED doctors first, in canonical order.
func (t Team) All() []Doctor {
	out := make([]Doctor, 0, len(t.Fixed)+len(t.Rotation))
	out = append(out, t.Fixed...)
	out = append(out, t.Rotation...)
	return out
}

// FixedNames returns the display names of FIXED doctors in canonical order.
func (t Team) FixedNames() []string {
	names := make([]string, len(t.Fixed))
	for i, d := range t.Fixed {
		names[i] = d.Name
	}
	return names
}

// RotationNames returns the display names of ROTATION doctors in canonical order.
func (t Team) RotationNames() []string {
	names := make([]string, len(t.Rotation))
	for i, d := range t.Rotation {
		names[i] = d.Name
	}
	return names
}

// ByName looks up a doctor by display name across both roles.
func (t Team) ByName(name string) (Doctor, bool) {
	for _, d := range t.Fixed {
		if d.Name == name {
			return d, true
		}
	}
	for _, d := range t.Rotation {
		if d.Name == name {
			return d, true
		}
	}
	return Doctor{}, false
}

// SeniorFixed returns the first FIXED doctor in canonical order — the one
// excluded from the daily-timetable matrix (spec §4.5). The second
// return value is false if the team has no FIXED doctors.
func (t Team) SeniorFixed() (Doctor, bool) {
	if len(t.Fixed) == 0 {
		return Doctor{}, false
	}
	return t.Fixed[0], true
}
