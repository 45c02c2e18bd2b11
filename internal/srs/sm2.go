package srs

import (
	"fmt"
	"time"
)

const (
	// InitialEaseFactor is the SM-2 starting ease for a card never reviewed.
	InitialEaseFactor = 2.5
	// MinEaseFactor is the floor applied after every ease update.
	MinEaseFactor = 1.3
	// MasteryQuality is the quality at or above which a single review counts
	// as mastering the card for topic aggregation.
	MasteryQuality = 4
)

// State is the scheduling state of one card for one user. It is the
// projection of the latest grading event; Grade never mutates its input.
type State struct {
	EaseFactor  float64
	Interval    int // days
	Repetitions int
	NextReview  time.Time
	ReviewedAt  time.Time
}

// NewState returns the state used before any review exists.
func NewState() State {
	return State{
		EaseFactor:  InitialEaseFactor,
		Interval:    1,
		Repetitions: 0,
	}
}

// ValidQuality reports whether q is a legal 0-5 recall score.
func ValidQuality(q int) bool {
	return q >= 0 && q <= 5
}

// Grade applies one SM-2 review to prior and returns the new state.
// prior == nil means first-ever review of the card by this user.
//
// quality < 3 is a lapse: repetitions and interval reset, the card comes
// back the next day. quality >= 3 grows the interval 1 -> 6 ->
// floor(interval * ease). The ease update runs in both branches, matching
// the classic formula; it can lower ease (quality 3) as well as raise it
// (quality 5), and is clamped at 1.3.
func Grade(prior *State, quality int, now time.Time) (State, error) {
	if !ValidQuality(quality) {
		return State{}, fmt.Errorf("quality %d out of range [0,5]", quality)
	}

	st := NewState()
	if prior != nil {
		st = *prior
	}

	if quality < 3 {
		st.Repetitions = 0
		st.Interval = 1
	} else {
		switch st.Repetitions {
		case 0:
			st.Interval = 1
		case 1:
			st.Interval = 6
		default:
			st.Interval = int(float64(st.Interval) * st.EaseFactor)
		}
		st.Repetitions++
	}

	q := float64(quality)
	st.EaseFactor = st.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if st.EaseFactor < MinEaseFactor {
		st.EaseFactor = MinEaseFactor
	}

	st.ReviewedAt = now
	st.NextReview = now.AddDate(0, 0, st.Interval)
	return st, nil
}

// Mastered reports whether a review of the given quality counts as
// mastering the card.
func Mastered(quality int) bool {
	return quality >= MasteryQuality
}

// Due reports whether a card with the given next-review time is due at now.
// A card with no review history is always due; callers model that by
// passing a zero next-review time.
func Due(nextReview time.Time, now time.Time) bool {
	return nextReview.IsZero() || !nextReview.After(now)
}
