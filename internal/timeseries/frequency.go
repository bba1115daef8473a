package timeseries

import "time"

// Frequency is the calendar period at which a series is regularly sampled,
// or Irregular when no known period fits.
type Frequency int

const (
	Irregular Frequency = iota
	Daily
	BusinessDaily
	Weekly
	Monthly
	Quarterly
	Annual
)

// String returns the string representation of the frequency.
func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case BusinessDaily:
		return "business-daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Annual:
		return "annual"
	default:
		return "irregular"
	}
}

// Rank places detected frequencies on the finer-to-coarser total order
// daily < business-daily < weekly < monthly < quarterly < annual. The second
// return value is false when the frequency has no position in the order.
func (f Frequency) Rank() (int, bool) {
	switch f {
	case Daily:
		return 1, true
	case BusinessDaily:
		return 2, true
	case Weekly:
		return 3, true
	case Monthly:
		return 4, true
	case Quarterly:
		return 5, true
	case Annual:
		return 6, true
	default:
		return 0, false
	}
}

// Detect infers the sampling frequency of a series by checking whether every
// consecutive timestamp delta is consistent with one known calendar period.
// Series with fewer than two observations, or with inconsistent deltas, are
// Irregular.
func Detect(s *Series) Frequency {
	if s == nil || s.Len() < 2 {
		return Irregular
	}

	deltas := make([]int, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		d := daysBetween(s.At(i-1).Date, s.At(i).Date)
		deltas = append(deltas, d)
	}

	if all(deltas, func(d int) bool { return d == 1 }) {
		return Daily
	}
	if all(deltas, func(d int) bool { return d == 7 }) {
		return Weekly
	}
	if allWeekdays(s) && all(deltas, func(d int) bool { return d >= 1 && d <= 3 }) {
		return BusinessDaily
	}
	if all(deltas, func(d int) bool { return d >= 28 && d <= 31 }) {
		return Monthly
	}
	if all(deltas, func(d int) bool { return d >= 89 && d <= 92 }) {
		return Quarterly
	}
	if all(deltas, func(d int) bool { return d >= 365 && d <= 366 }) {
		return Annual
	}

	return Irregular
}

// PeriodKey maps a timestamp to an integer identifying its calendar period
// at the given frequency. Two timestamps share a key exactly when they fall
// in the same period, regardless of label convention (month start vs end).
func PeriodKey(t time.Time, f Frequency) int64 {
	switch f {
	case Monthly:
		return int64(t.Year())*12 + int64(t.Month()) - 1
	case Quarterly:
		return int64(t.Year())*4 + int64(t.Month()-1)/3
	case Annual:
		return int64(t.Year())
	case Weekly:
		// Weeks start on Monday. The epoch (1970-01-01) was a Thursday.
		return floorDiv(epochDays(t)+3, 7)
	default:
		return epochDays(t)
	}
}

// PeriodEnd returns the canonical last calendar day of the period identified
// by key at the given frequency.
func PeriodEnd(key int64, f Frequency) time.Time {
	switch f {
	case Monthly:
		year := int(key / 12)
		month := time.Month(key%12 + 1)
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	case Quarterly:
		year := int(key / 4)
		startMonth := time.Month(key%4*3 + 1)
		return time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 3, -1)
	case Annual:
		return time.Date(int(key), time.December, 31, 0, 0, 0, 0, time.UTC)
	case Weekly:
		return dateFromEpochDays(key*7 + 3)
	default:
		return dateFromEpochDays(key)
	}
}

func epochDays(t time.Time) int64 {
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return floorDiv(u.Unix(), 86400)
}

func dateFromEpochDays(days int64) time.Time {
	return time.Unix(days*86400, 0).UTC()
}

func daysBetween(a, b time.Time) int {
	return int(epochDays(b) - epochDays(a))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func all(deltas []int, ok func(int) bool) bool {
	for _, d := range deltas {
		if !ok(d) {
			return false
		}
	}
	return true
}

func allWeekdays(s *Series) bool {
	for i := 0; i < s.Len(); i++ {
		wd := s.At(i).Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	return true
}
