package services

import (
	"strings"
	"testing"
)

func TestBuildSummary_NothingActionable(t *testing.T) {
	got := buildSummary(nil, 0)
	if got != encouragementAdvice {
		t.Fatalf("expected encouragement, got %q", got)
	}
}

func TestBuildSummary_DueOnly(t *testing.T) {
	got := buildSummary(nil, 12)
	if got != "Review 12 due flashcards" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestBuildSummary_WeakOnly(t *testing.T) {
	weak := []WeakTopicRecommendation{
		{Topic: "Ethics"},
		{Topic: "Fixed Income"},
		{Topic: "Derivatives"},
	}
	got := buildSummary(weak, 0)
	if got != "Practice more questions on: Ethics, Fixed Income" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestBuildSummary_JoinsFragmentsWithPeriods(t *testing.T) {
	weak := []WeakTopicRecommendation{{Topic: "Ethics"}}
	got := buildSummary(weak, 3)
	want := "Review 3 due flashcards. Practice more questions on: Ethics"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if strings.Contains(got, "..") {
		t.Fatalf("fragments joined badly: %q", got)
	}
}
