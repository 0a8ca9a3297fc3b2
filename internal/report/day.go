// Package report derives display groupings from a list of expenses. Every
// function is pure: the input is never modified and equal inputs give equal
// outputs.
package report

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// DayGroup holds the expenses of one local calendar day.
type DayGroup struct {
	Date     time.Time
	Label    string
	Total    int64
	Expenses []expense.Expense
}

// GroupByDay buckets records by calendar date in now's location, newest day
// first. Records inside a bucket keep their input order.
func GroupByDay(records []expense.Expense, now time.Time) []DayGroup {
	loc := now.Location()
	index := make(map[time.Time]int)
	groups := []DayGroup{}

	for _, e := range records {
		day := startOfDay(e.CreatedAt.In(loc))

		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Date: day, Label: dayLabel(day, now)})
		}

		groups[i].Total += e.Amount
		groups[i].Expenses = append(groups[i].Expenses, e)
	}

	slices.SortStableFunc(groups, func(a, b DayGroup) int {
		return b.Date.Compare(a.Date)
	})

	return groups
}

func dayLabel(day, now time.Time) string {
	today := startOfDay(now)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Year() != now.Year():
		return day.Format("Mon, Jan 2, 2006")
	}

	return day.Format("Mon, Jan 2")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
