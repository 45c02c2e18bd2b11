package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeGenerationInput(t *testing.T) {
	if _, _, _, err := normalizeGenerationInput("", "Ethics", "L1"); err == nil {
		t.Fatalf("expected error for empty content")
	}
	if _, _, _, err := normalizeGenerationInput("text", "", "L1"); err == nil {
		t.Fatalf("expected error for empty topic")
	}
	if _, _, _, err := normalizeGenerationInput("text", "Ethics", ""); err == nil {
		t.Fatalf("expected error for empty level")
	}

	long := strings.Repeat("a", maxContentChars+500)
	content, topic, level, err := normalizeGenerationInput(long, " Ethics ", " L1 ")
	if err != nil {
		t.Fatalf("normalizeGenerationInput: %v", err)
	}
	if len(content) != maxContentChars {
		t.Fatalf("expected content truncated to %d, got %d", maxContentChars, len(content))
	}
	if topic != "Ethics" || level != "L1" {
		t.Fatalf("expected trimmed topic/level, got %q/%q", topic, level)
	}
}

func TestNormalizeGenerationInput_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", maxContentChars)
	content, _, _, err := normalizeGenerationInput(long, "Ethics", "L1")
	if err != nil {
		t.Fatalf("normalizeGenerationInput: %v", err)
	}
	if len(content) > maxContentChars {
		t.Fatalf("expected at most %d bytes, got %d", maxContentChars, len(content))
	}
	if !utf8.ValidString(content) {
		t.Fatalf("truncation split a rune: %q", content[len(content)-4:])
	}
}

func TestCoerceFlashcards(t *testing.T) {
	obj := map[string]any{
		"flashcards": []any{
			map[string]any{
				"front":      "What is present value?",
				"back":       "Discounted future value.",
				"difficulty": "easy",
				"tags":       []any{"tvm", "pv"},
			},
			map[string]any{
				"front":      "",
				"back":       "dropped: no front",
				"difficulty": "medium",
			},
			map[string]any{
				"front":      "Weird difficulty falls back",
				"back":       "to medium",
				"difficulty": "brutal",
			},
		},
	}

	cards := coerceFlashcards(obj, "Quant", "L1")
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Level != "L1" || cards[0].Topic != "Quant" {
		t.Fatalf("level/topic not stamped: %q/%q", cards[0].Level, cards[0].Topic)
	}
	if cards[0].Difficulty != "easy" {
		t.Fatalf("expected difficulty=easy, got %q", cards[0].Difficulty)
	}
	if cards[1].Difficulty != "medium" {
		t.Fatalf("expected fallback difficulty=medium, got %q", cards[1].Difficulty)
	}
	if cards[0].Tags == nil {
		t.Fatalf("expected tags to be carried over")
	}
}

func TestCoerceQuestions(t *testing.T) {
	obj := map[string]any{
		"questions": []any{
			map[string]any{
				"question":       "2+2?",
				"option_a":       "4",
				"option_b":       "5",
				"option_c":       "6",
				"correct_answer": "a",
				"explanation":    "Basic arithmetic.",
				"difficulty":     "easy",
				"question_type":  "calculation",
			},
			map[string]any{
				"question":       "Dropped: bad answer letter",
				"option_a":       "x",
				"option_b":       "y",
				"option_c":       "z",
				"correct_answer": "D",
			},
			map[string]any{
				"question":       "Dropped: missing option",
				"option_a":       "x",
				"option_b":       "",
				"option_c":       "z",
				"correct_answer": "A",
			},
		},
	}

	questions := coerceQuestions(obj, "Quant", "L1")
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	q := questions[0]
	if q.CorrectAnswer != "A" {
		t.Fatalf("expected normalized answer A, got %q", q.CorrectAnswer)
	}
	if q.QuestionType != "calculation" {
		t.Fatalf("expected question_type=calculation, got %q", q.QuestionType)
	}
	if q.Level != "L1" || q.Topic != "Quant" {
		t.Fatalf("level/topic not stamped: %q/%q", q.Level, q.Topic)
	}
}

func TestCoerceEmptyPayloads(t *testing.T) {
	if got := coerceFlashcards(map[string]any{}, "t", "l"); len(got) != 0 {
		t.Fatalf("expected no cards, got %d", len(got))
	}
	if got := coerceQuestions(map[string]any{"questions": "not a list"}, "t", "l"); len(got) != 0 {
		t.Fatalf("expected no questions, got %d", len(got))
	}
}
