package srs

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestGrade_RejectsOutOfRangeQuality(t *testing.T) {
	for _, q := range []int{-1, 6, 100} {
		if _, err := Grade(nil, q, testNow); err == nil {
			t.Errorf("Grade(nil, %d) expected error, got nil", q)
		}
	}
}

func TestGrade_FirstReview(t *testing.T) {
	st, err := Grade(nil, 5, testNow)
	if err != nil {
		t.Fatalf("Grade() error: %v", err)
	}
	if st.Interval != 1 {
		t.Errorf("Interval = %d, want 1", st.Interval)
	}
	if st.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", st.Repetitions)
	}
	if math.Abs(st.EaseFactor-2.6) > 1e-9 {
		t.Errorf("EaseFactor = %f, want 2.6", st.EaseFactor)
	}
	if !st.NextReview.Equal(testNow.AddDate(0, 0, 1)) {
		t.Errorf("NextReview = %v, want %v", st.NextReview, testNow.AddDate(0, 0, 1))
	}
}

func TestGrade_SuccessIntervals(t *testing.T) {
	tests := []struct {
		name         string
		prior        State
		quality      int
		wantInterval int
		wantReps     int
	}{
		{"reps0", State{EaseFactor: 2.5, Interval: 1, Repetitions: 0}, 4, 1, 1},
		{"reps1", State{EaseFactor: 2.5, Interval: 1, Repetitions: 1}, 4, 6, 2},
		{"reps2_floors_product", State{EaseFactor: 2.5, Interval: 6, Repetitions: 2}, 4, 15, 3},
		{"reps3", State{EaseFactor: 2.0, Interval: 15, Repetitions: 3}, 3, 30, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Grade(&tt.prior, tt.quality, testNow)
			if err != nil {
				t.Fatalf("Grade() error: %v", err)
			}
			if st.Interval != tt.wantInterval {
				t.Errorf("Interval = %d, want %d", st.Interval, tt.wantInterval)
			}
			if st.Repetitions != tt.wantReps {
				t.Errorf("Repetitions = %d, want %d", st.Repetitions, tt.wantReps)
			}
		})
	}
}

func TestGrade_LapseResetsProgress(t *testing.T) {
	for q := 0; q < 3; q++ {
		prior := State{EaseFactor: 2.5, Interval: 30, Repetitions: 7}
		st, err := Grade(&prior, q, testNow)
		if err != nil {
			t.Fatalf("Grade() error: %v", err)
		}
		if st.Repetitions != 0 {
			t.Errorf("quality %d: Repetitions = %d, want 0", q, st.Repetitions)
		}
		if st.Interval != 1 {
			t.Errorf("quality %d: Interval = %d, want 1", q, st.Interval)
		}
		if prior.Interval != 30 || prior.Repetitions != 7 {
			t.Error("Grade mutated its input state")
		}
	}
}

func TestGrade_EaseFloor(t *testing.T) {
	for q := 0; q <= 5; q++ {
		prior := State{EaseFactor: 1.3, Interval: 1, Repetitions: 0}
		st, err := Grade(&prior, q, testNow)
		if err != nil {
			t.Fatalf("Grade() error: %v", err)
		}
		if st.EaseFactor < MinEaseFactor {
			t.Errorf("quality %d: EaseFactor = %f below floor %f", q, st.EaseFactor, MinEaseFactor)
		}
	}
}

func TestGrade_EaseDirection(t *testing.T) {
	prior := State{EaseFactor: 2.5, Interval: 6, Repetitions: 2}

	up, _ := Grade(&prior, 5, testNow)
	if up.EaseFactor <= 2.5 {
		t.Errorf("quality 5 should raise ease, got %f", up.EaseFactor)
	}

	down, _ := Grade(&prior, 3, testNow)
	if down.EaseFactor >= 2.5 {
		t.Errorf("quality 3 should lower ease, got %f", down.EaseFactor)
	}
}

func TestGrade_NextReviewMatchesInterval(t *testing.T) {
	prior := State{EaseFactor: 2.5, Interval: 6, Repetitions: 2}
	st, err := Grade(&prior, 5, testNow)
	if err != nil {
		t.Fatalf("Grade() error: %v", err)
	}
	want := testNow.AddDate(0, 0, st.Interval)
	if !st.NextReview.Equal(want) {
		t.Errorf("NextReview = %v, want %v", st.NextReview, want)
	}
	if !st.ReviewedAt.Equal(testNow) {
		t.Errorf("ReviewedAt = %v, want %v", st.ReviewedAt, testNow)
	}
}

// The three-review scenario from the SM-2 contract: 5 then 4 then a lapse.
func TestGrade_Scenario(t *testing.T) {
	first, err := Grade(nil, 5, testNow)
	if err != nil {
		t.Fatalf("first Grade() error: %v", err)
	}
	if first.Interval != 1 || first.Repetitions != 1 {
		t.Fatalf("first review: interval=%d reps=%d, want 1/1", first.Interval, first.Repetitions)
	}
	if math.Abs(first.EaseFactor-2.6) > 1e-9 {
		t.Fatalf("first review: ease=%f, want 2.6", first.EaseFactor)
	}

	second, err := Grade(&first, 4, testNow.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("second Grade() error: %v", err)
	}
	if second.Interval != 6 || second.Repetitions != 2 {
		t.Fatalf("second review: interval=%d reps=%d, want 6/2", second.Interval, second.Repetitions)
	}

	third, err := Grade(&second, 2, testNow.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("third Grade() error: %v", err)
	}
	if third.Interval != 1 || third.Repetitions != 0 {
		t.Fatalf("lapse: interval=%d reps=%d, want 1/0", third.Interval, third.Repetitions)
	}
	if third.EaseFactor >= second.EaseFactor {
		t.Fatalf("lapse should lower ease: %f -> %f", second.EaseFactor, third.EaseFactor)
	}
}

func TestMastered(t *testing.T) {
	for q := 0; q <= 5; q++ {
		want := q >= 4
		if got := Mastered(q); got != want {
			t.Errorf("Mastered(%d) = %v, want %v", q, got, want)
		}
	}
}

func TestDue(t *testing.T) {
	if !Due(time.Time{}, testNow) {
		t.Error("card with no history should be due")
	}
	if !Due(testNow, testNow) {
		t.Error("card due exactly now should be due")
	}
	if !Due(testNow.Add(-time.Hour), testNow) {
		t.Error("card past due should be due")
	}
	if Due(testNow.Add(time.Hour), testNow) {
		t.Error("card due in the future should not be due")
	}
}
