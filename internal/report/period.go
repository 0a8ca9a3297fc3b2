package report

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// MaxPeriodBuckets caps GroupByPeriod to the most recent buckets.
const MaxPeriodBuckets = 14

var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod accepts a period name or its first letter, in any case.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "d":
		return PeriodDay, nil
	case "week", "w":
		return PeriodWeek, nil
	case "month", "m":
		return PeriodMonth, nil
	}

	return "", fmt.Errorf("unknown period %q: want day, week or month", s)
}

type PeriodBucket struct {
	Key        string
	Label      string
	Start      time.Time
	Total      int64
	ByCategory map[expense.Category]int64
}

// Segment is one category's share of a rendered bar.
type Segment struct {
	Category expense.Category
	Amount   int64
	Width    int
}

// GroupByPeriod buckets records by day, Sunday-start week or month in loc,
// newest first, keeping at most MaxPeriodBuckets buckets.
func GroupByPeriod(records []expense.Expense, period Period, loc *time.Location) []PeriodBucket {
	index := make(map[time.Time]int)
	buckets := []PeriodBucket{}

	for _, e := range records {
		start := periodStart(e.CreatedAt.In(loc), period)

		i, ok := index[start]
		if !ok {
			i = len(buckets)
			index[start] = i
			buckets = append(buckets, newBucket(start, period))
		}

		buckets[i].Total += e.Amount
		buckets[i].ByCategory[e.Category] += e.Amount
	}

	slices.SortFunc(buckets, func(a, b PeriodBucket) int {
		return b.Start.Compare(a.Start)
	})

	if len(buckets) > MaxPeriodBuckets {
		buckets = buckets[:MaxPeriodBuckets]
	}

	return buckets
}

func newBucket(start time.Time, period Period) PeriodBucket {
	byCategory := make(map[expense.Category]int64, len(expense.Categories))
	for _, c := range expense.Categories {
		byCategory[c] = 0
	}

	b := PeriodBucket{Start: start, ByCategory: byCategory}

	switch period {
	case PeriodMonth:
		b.Key = start.Format("2006-01")
		b.Label = start.Format("Jan 2006")
	case PeriodWeek:
		b.Key = start.Format(time.DateOnly)
		b.Label = "Week of " + start.Format("Jan 2")
	default:
		b.Key = start.Format(time.DateOnly)
		b.Label = start.Format("Mon, Jan 2")
	}

	return b
}

func periodStart(t time.Time, period Period) time.Time {
	day := startOfDay(t)

	switch period {
	case PeriodWeek:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case PeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}

	return day
}

// Segments splits a bar of width cells among the bucket's categories in
// enumeration order, proportionally to their amounts. Categories with no
// spending get no segment; the others get at least minWidth cells, so the
// segments may add up to more than width.
func (b PeriodBucket) Segments(width, minWidth int) []Segment {
	if b.Total <= 0 || width <= 0 {
		return nil
	}

	var segments []Segment

	for _, c := range expense.Categories {
		amount := b.ByCategory[c]
		if amount <= 0 {
			continue
		}

		w := int(math.Round(float64(amount) / float64(b.Total) * float64(width)))
		w = max(w, minWidth)

		segments = append(segments, Segment{Category: c, Amount: amount, Width: w})
	}

	return segments
}
