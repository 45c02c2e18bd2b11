package srs

import (
	"sort"
	"time"
)

// Streaks summarizes consecutive-study-day statistics.
type Streaks struct {
	Current   int
	Longest   int
	TotalDays int
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeStreaks folds the set of study timestamps into streak stats.
// The current streak counts back from today only when the most recent study
// date is today or yesterday; otherwise it is zero. The longest streak is
// the longest run of calendar-consecutive dates anywhere in the history.
func ComputeStreaks(studiedAt []time.Time, today time.Time) Streaks {
	if len(studiedAt) == 0 {
		return Streaks{}
	}

	seen := make(map[time.Time]bool, len(studiedAt))
	for _, t := range studiedAt {
		seen[DateOf(t)] = true
	}

	// Distinct dates, newest first.
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	todayDate := DateOf(today)
	yesterday := todayDate.AddDate(0, 0, -1)

	st := Streaks{TotalDays: len(dates)}

	if dates[0].Equal(todayDate) || dates[0].Equal(yesterday) {
		expect := dates[0]
		for _, d := range dates {
			if !d.Equal(expect) {
				break
			}
			st.Current++
			expect = expect.AddDate(0, 0, -1)
		}
	}

	longest, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	st.Longest = longest

	return st
}
