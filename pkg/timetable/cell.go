// Package timetable expands a finalized on-call roster into a full
// workday matrix per doctor, enforcing a 48-hour weekly cap for doctors
// who cannot opt out of it. It is entirely deterministic: the same roster
// and preferences always produce byte-identical output.
package timetable

// DailyCell is the closed set of labels a (date, doctor) cell can carry.
// Unassigned is never observable in the output of Generate — it exists
// only as Pass A/B working state and is always replaced by Pass C.
type DailyCell string

const (
	OnCall24h   DailyCell = "ON_CALL_24H"
	PostCallOff DailyCell = "POST_CALL_OFF"
	WeekendOff  DailyCell = "WEEKEND_OFF"
	SatRuleOff  DailyCell = "SAT_RULE_OFF"
	Leave       DailyCell = "LEAVE"
	Course      DailyCell = "COURSE"
	CapOff      DailyCell = "CAP_OFF"
	StandardDay DailyCell = "STANDARD_DAY"

	unassigned DailyCell = "UNASSIGNED"
)

// dailyNormHours is the standard weekday shift length: 7 h 35 min.
const dailyNormHours = 7 + 35.0/60.0

// weeklyCapHours is the 48-hour limit enforced in Pass B for no_optout doctors.
const weeklyCapHours = 48.0
