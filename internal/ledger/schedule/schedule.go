// Package schedule expands recurring transaction definitions into the
// concrete calendar dates on which they post.
package schedule

import (
	"time"

	"github.com/moneyd/moneyd/internal/ledger/shared"
)

// Period enumerates supported recurrence periods.
type Period string

const (
	PeriodYearly     Period = "Yearly"
	PeriodQuarterly  Period = "Quarterly"
	PeriodHalfYearly Period = "Half-Yearly"
	PeriodMonthly    Period = "Monthly"
	PeriodDaily      Period = "Daily"
	PeriodWorkDay    Period = "Work-Day"
)

// Valid reports whether the period is a known recurrence code.
func (p Period) Valid() bool {
	switch p {
	case PeriodYearly, PeriodQuarterly, PeriodHalfYearly, PeriodMonthly, PeriodDaily, PeriodWorkDay:
		return true
	}
	return false
}

// months returns the month stride for month-based periods, 0 otherwise.
func (p Period) months() int {
	switch p {
	case PeriodYearly:
		return 12
	case PeriodHalfYearly:
		return 6
	case PeriodQuarterly:
		return 3
	case PeriodMonthly:
		return 1
	}
	return 0
}

// Schedule is an ascending, possibly unbounded sequence of occurrence
// dates. The zero value is not usable; construct with New or Once.
type Schedule struct {
	period Period
	start  time.Time
	end    *time.Time
	once   bool
}

// New builds a recurring schedule. The period is validated here, before any
// iteration happens; unknown codes return shared.ErrInvalidPeriod. The end
// date is optional, an absent end means the sequence never terminates.
func New(period Period, start time.Time, end *time.Time) (*Schedule, error) {
	if !period.Valid() {
		return nil, shared.ErrInvalidPeriod
	}
	s := &Schedule{period: period, start: Day(start)}
	if end != nil {
		e := Day(*end)
		s.end = &e
	}
	return s, nil
}

// Once builds the degenerate single-date schedule used by one-off
// transactions.
func Once(day time.Time) *Schedule {
	d := Day(day)
	return &Schedule{start: d, end: &d, once: true}
}

// Start returns the first anchor date of the schedule.
func (s *Schedule) Start() time.Time { return s.start }

// Iter returns a fresh iterator positioned before the first occurrence.
// Iterators are restartable: each call to Iter starts over.
func (s *Schedule) Iter() *Iterator {
	return &Iterator{s: s}
}

// Iterator walks a schedule's occurrence dates in ascending order.
type Iterator struct {
	s    *Schedule
	n    int
	cur  time.Time
	done bool
}

// Next yields the next occurrence date. The second return is false once the
// sequence is exhausted (a bounded schedule stepped past its end date).
func (it *Iterator) Next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	var d time.Time
	switch {
	case it.s.once:
		d = it.s.start
		it.done = true
	case it.s.period == PeriodWorkDay:
		if it.n == 0 {
			d = rollForwardWeekend(it.s.start)
		} else {
			d = nextBusinessDay(it.cur)
		}
		it.cur = d
		it.n++
	case it.s.period == PeriodDaily:
		d = it.s.start.AddDate(0, 0, it.n)
		it.n++
	default:
		// Month-based periods anchor every occurrence to the original
		// start date, so clamping never compounds: Jan 31 yields
		// Feb 29 and then Mar 31 again.
		d = addMonths(it.s.start, it.n*it.s.period.months())
		it.n++
	}
	if it.s.end != nil && d.After(*it.s.end) {
		it.done = true
		return time.Time{}, false
	}
	return d, true
}

// Occurrences materializes every occurrence within [from, to], both
// inclusive. Expansion stops at the first date past to, so open-ended
// schedules never over-generate.
func (s *Schedule) Occurrences(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	out := []time.Time{}
	it := s.Iter()
	for {
		d, ok := it.Next()
		if !ok || d.After(to) {
			return out
		}
		if d.Before(from) {
			continue
		}
		out = append(out, d)
	}
}

// NextOccurrence returns the smallest occurrence date at or after ref, or
// false when the schedule is exhausted before reaching ref.
func (s *Schedule) NextOccurrence(ref time.Time) (time.Time, bool) {
	ref = Day(ref)
	it := s.Iter()
	for {
		d, ok := it.Next()
		if !ok {
			return time.Time{}, false
		}
		if !d.Before(ref) {
			return d, true
		}
	}
}

// PreviousOccurrence returns the largest occurrence date strictly before
// ref, or false when ref does not come after the first occurrence.
func (s *Schedule) PreviousOccurrence(ref time.Time) (time.Time, bool) {
	ref = Day(ref)
	var prev time.Time
	found := false
	it := s.Iter()
	for {
		d, ok := it.Next()
		if !ok || !d.Before(ref) {
			return prev, found
		}
		prev, found = d, true
	}
}

// IsOccurrence reports whether day is an exact occurrence of the schedule.
func (s *Schedule) IsOccurrence(day time.Time) bool {
	next, ok := s.NextOccurrence(day)
	return ok && next.Equal(Day(day))
}

// Day normalizes a timestamp to midnight UTC, the canonical representation
// for ledger dates throughout the engine.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + months
	y += total / 12
	m = time.Month(total%12 + 1)
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func rollForwardWeekend(t time.Time) time.Time {
	for isWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func nextBusinessDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	return rollForwardWeekend(t)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
