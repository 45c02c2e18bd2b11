package srs

import (
	"testing"
	"time"
)

func day(today time.Time, offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

func TestComputeStreaks_Empty(t *testing.T) {
	got := ComputeStreaks(nil, testNow)
	if got.Current != 0 || got.Longest != 0 || got.TotalDays != 0 {
		t.Errorf("ComputeStreaks(nil) = %+v, want zeros", got)
	}
}

func TestComputeStreaks_ThreeConsecutiveEndingToday(t *testing.T) {
	dates := []time.Time{day(testNow, 0), day(testNow, -1), day(testNow, -2)}
	got := ComputeStreaks(dates, testNow)
	if got.Current != 3 {
		t.Errorf("Current = %d, want 3", got.Current)
	}
	if got.Longest != 3 {
		t.Errorf("Longest = %d, want 3", got.Longest)
	}
	if got.TotalDays != 3 {
		t.Errorf("TotalDays = %d, want 3", got.TotalDays)
	}
}

func TestComputeStreaks_MostRecentYesterdayStillCounts(t *testing.T) {
	dates := []time.Time{day(testNow, -1), day(testNow, -2)}
	got := ComputeStreaks(dates, testNow)
	if got.Current != 2 {
		t.Errorf("Current = %d, want 2", got.Current)
	}
}

func TestComputeStreaks_StaleHistoryHasNoCurrentStreak(t *testing.T) {
	dates := []time.Time{day(testNow, -2), day(testNow, -3), day(testNow, -4)}
	got := ComputeStreaks(dates, testNow)
	if got.Current != 0 {
		t.Errorf("Current = %d, want 0 when last study was two days ago", got.Current)
	}
	if got.Longest != 3 {
		t.Errorf("Longest = %d, want 3", got.Longest)
	}
}

func TestComputeStreaks_LongestRunInMiddleOfHistory(t *testing.T) {
	dates := []time.Time{
		day(testNow, 0),
		day(testNow, -5), day(testNow, -6), day(testNow, -7), day(testNow, -8),
	}
	got := ComputeStreaks(dates, testNow)
	if got.Current != 1 {
		t.Errorf("Current = %d, want 1", got.Current)
	}
	if got.Longest != 4 {
		t.Errorf("Longest = %d, want 4", got.Longest)
	}
	if got.TotalDays != 5 {
		t.Errorf("TotalDays = %d, want 5", got.TotalDays)
	}
}

func TestComputeStreaks_DuplicateTimestampsSameDay(t *testing.T) {
	dates := []time.Time{
		day(testNow, 0), day(testNow, 0).Add(3 * time.Hour),
		day(testNow, -1), day(testNow, -1).Add(9 * time.Hour),
	}
	got := ComputeStreaks(dates, testNow)
	if got.Current != 2 {
		t.Errorf("Current = %d, want 2", got.Current)
	}
	if got.TotalDays != 2 {
		t.Errorf("TotalDays = %d, want 2", got.TotalDays)
	}
}
