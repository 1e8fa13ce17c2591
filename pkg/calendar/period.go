package calendar

import (
	"fmt"
	"time"
)

// ValidStartMonths lists the six months a settlement period may start on.
var ValidStartMonths = []time.Month{
	time.January, time.March, time.May, time.July, time.September, time.November,
}

// ValidateStartMonth reports an error unless month is one of the six odd
// months a settlement period may begin on (spec: "always starts on the
// first day of an odd month").
func ValidateStartMonth(month time.Month) error {
	for _, m := range ValidStartMonths {
		if m == month {
			return nil
		}
	}
	return fmt.Errorf("invalid settlement start month %s: must be one of Jan/Mar/May/Jul/Sep/Nov", month)
}

// PeriodDates returns every calendar date in the two-month settlement
// period starting on the first of startMonth in year, in calendar order.
func PeriodDates(year int, startMonth time.Month) ([]time.Time, error) {
	if err := ValidateStartMonth(startMonth); err != nil {
		return nil, err
	}

	var dates []time.Time
	for _, month := range [2]time.Month{startMonth, startMonth + 1} {
		y := year
		m := month
		if m > time.December {
			m -= 12
			y++
		}
		daysInMonth := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
		for d := 1; d <= daysInMonth; d++ {
			dates = append(dates, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		}
	}
	return dates, nil
}

// PeriodStart returns the first date of the settlement period (day zero
// for week-key indexing).
func PeriodStart(year int, startMonth time.Month) time.Time {
	return time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
}
