package balance

import (
	"testing"
	"time"
)

func TestIdealSeriesFillsGaps(t *testing.T) {
	// One transaction of -50 on 2024-01-10, window covers the month.
	postings := []Posting{{AccountID: 1, Date: day(2024, time.January, 10), Amount: dec("-50.00")}}

	series := BuildIdealSeries(postings, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 31))
	if len(series) != 31 {
		t.Fatalf("expected one row per calendar day, got %d", len(series))
	}
	for _, p := range series {
		switch {
		case p.Date.Before(day(2024, time.January, 10)):
			if !p.Balance.IsZero() {
				t.Fatalf("%v: expected balance 0 got %s", p.Date, p.Balance)
			}
		default:
			if !p.Balance.Equal(dec("-50.00")) {
				t.Fatalf("%v: expected balance -50 got %s", p.Date, p.Balance)
			}
		}
	}
}

func TestIdealSeriesCumulativeCorrectness(t *testing.T) {
	postings := []Posting{
		{AccountID: 1, Date: day(2024, time.January, 2), Amount: dec("10.10")},
		{AccountID: 1, Date: day(2024, time.January, 2), Amount: dec("0.20")},
		{AccountID: 1, Date: day(2024, time.January, 4), Amount: dec("-3.30")},
	}

	series := BuildIdealSeries(postings, []int64{1}, day(2024, time.January, 1), day(2024, time.January, 5))
	// balance(d2) - balance(d1) must equal the posting sum over (d1, d2].
	diff := series[4].Balance.Sub(series[0].Balance)
	if !diff.Equal(dec("7.00")) {
		t.Fatalf("expected window delta 7.00 got %s", diff)
	}
	if !series[1].Amount.Equal(dec("10.30")) {
		t.Fatalf("same-day postings must sum exactly, got %s", series[1].Amount)
	}
}

func TestIdealSeriesInactiveAccountStaysFlat(t *testing.T) {
	postings := []Posting{{AccountID: 1, Date: day(2024, time.January, 2), Amount: dec("5.00")}}

	series := BuildIdealSeries(postings, []int64{1, 2}, day(2024, time.January, 1), day(2024, time.January, 3))
	var accountTwo []Point
	for _, p := range series {
		if p.AccountID == 2 {
			accountTwo = append(accountTwo, p)
		}
	}
	if len(accountTwo) != 3 {
		t.Fatalf("inactive account must still be reindexed, got %d rows", len(accountTwo))
	}
	for _, p := range accountTwo {
		if !p.Balance.IsZero() || !p.Amount.IsZero() {
			t.Fatalf("inactive account row %v not flat zero", p)
		}
	}
}

func TestIdealSeriesOrderedByAccountThenDate(t *testing.T) {
	series := BuildIdealSeries(nil, []int64{2, 1}, day(2024, time.January, 1), day(2024, time.January, 2))
	if len(series) != 4 {
		t.Fatalf("expected 4 rows got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if cur.AccountID < prev.AccountID {
			t.Fatal("accounts out of order")
		}
		if cur.AccountID == prev.AccountID && !prev.Date.Before(cur.Date) {
			t.Fatal("dates out of order within account")
		}
	}
}

func TestIdealSeriesEmptyAccountSet(t *testing.T) {
	series := BuildIdealSeries(nil, nil, day(2024, time.January, 1), day(2024, time.January, 31))
	if series == nil || len(series) != 0 {
		t.Fatalf("expected empty, non-nil series, got %#v", series)
	}
}
