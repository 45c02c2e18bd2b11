package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck-backend/internal/types"
)

func makeQuestions(n int) []*types.QuizQuestion {
	out := make([]*types.QuizQuestion, n)
	for i := range out {
		out[i] = &types.QuizQuestion{ID: uuid.New()}
	}
	return out
}

func idSet(questions []*types.QuizQuestion) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		set[q.ID] = true
	}
	return set
}

func TestComposeQuiz_PrioritizesUnattemptedThenMissed(t *testing.T) {
	pool := makeQuestions(20)
	unattempted := pool[:3]
	missed := pool[3:5]

	picked := composeQuiz(pool, unattempted, missed, 10, rand.New(rand.NewSource(1)))
	if len(picked) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(picked))
	}

	got := idSet(picked)
	if len(got) != 10 {
		t.Fatalf("expected 10 distinct questions, got %d", len(got))
	}
	for i, q := range unattempted {
		if !got[q.ID] {
			t.Fatalf("unattempted question %d missing from batch", i)
		}
	}
	for i, q := range missed {
		if !got[q.ID] {
			t.Fatalf("previously-missed question %d missing from batch", i)
		}
	}
}

func TestComposeQuiz_SmallPoolReturnsEverything(t *testing.T) {
	pool := makeQuestions(4)

	picked := composeQuiz(pool, pool[:1], nil, 10, rand.New(rand.NewSource(2)))
	if len(picked) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(picked))
	}
	if len(idSet(picked)) != 4 {
		t.Fatalf("expected distinct questions, got duplicates")
	}
}

func TestComposeQuiz_CapsUnattemptedAtHalf(t *testing.T) {
	pool := makeQuestions(30)
	unattempted := pool[:20]

	picked := composeQuiz(pool, unattempted, nil, 10, rand.New(rand.NewSource(3)))
	if len(picked) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(picked))
	}

	fresh := idSet(unattempted)
	count := 0
	for _, q := range picked {
		if fresh[q.ID] {
			count++
		}
	}
	// 5 from the unattempted partition, the rest topped up from the pool,
	// which may itself hand back unattempted questions.
	if count < 5 {
		t.Fatalf("expected at least 5 unattempted questions, got %d", count)
	}
}

func TestComposeQuiz_DeterministicForSeed(t *testing.T) {
	pool := makeQuestions(15)
	unattempted := pool[:6]
	missed := pool[6:9]

	a := composeQuiz(pool, unattempted, missed, 8, rand.New(rand.NewSource(7)))
	b := composeQuiz(pool, unattempted, missed, 8, rand.New(rand.NewSource(7)))
	if len(a) != len(b) {
		t.Fatalf("seeded runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("seeded runs diverge at index %d", i)
		}
	}
}

func TestComposeQuiz_EmptyPool(t *testing.T) {
	picked := composeQuiz(nil, nil, nil, 10, rand.New(rand.NewSource(4)))
	if len(picked) != 0 {
		t.Fatalf("expected empty batch, got %d", len(picked))
	}
}
