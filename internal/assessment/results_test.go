package assessment

import (
	"strings"
	"testing"
)

func TestCalculateResultsExtremes(t *testing.T) {
	f := NewFlow(twoByTwo())

	best := f.CalculateResults(answerAll(f, f.Start(), "full"))
	if best.OverallScore != 100 {
		t.Fatalf("expected 100 with max weights, got %v", best.OverallScore)
	}
	if len(best.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %+v", best.Recommendations)
	}

	worst := f.CalculateResults(answerAll(f, f.Start(), "none"))
	if worst.OverallScore != 0 {
		t.Fatalf("expected 0 with zero weights, got %v", worst.OverallScore)
	}
	if len(worst.Recommendations) != 2 || worst.Recommendations[0].Priority != PriorityHigh {
		t.Fatalf("expected two high priority recommendations, got %+v", worst.Recommendations)
	}
}

func TestCalculateResultsOrdersWorstFirst(t *testing.T) {
	catalog := &Catalog{Sections: []Section{
		{ID: "strong", Title: "Strong", Questions: []Question{
			{ID: "s1", Options: []Option{{ID: "lo", Weight: 1}, {ID: "hi", Weight: 10}}},
			{ID: "s2", Options: []Option{{ID: "lo", Weight: 8}, {ID: "hi", Weight: 10}}},
		}},
		{ID: "weak", Title: "Weak", Guidance: "Map the plots.", Questions: []Question{
			{ID: "w1", Text: "Plots mapped?", Options: []Option{{ID: "lo", Weight: 0}, {ID: "mid", Weight: 4}, {ID: "hi", Weight: 10}}},
			{ID: "w2", Text: "Register current?", Options: []Option{{ID: "lo", Weight: 4}, {ID: "hi", Weight: 10}}},
		}},
	}}
	f := NewFlow(catalog)

	s := f.Start()
	s = f.HandleAnswer(s, "s1", "hi")
	s = f.HandleAnswer(s, "s2", "lo")
	s = f.HandleAnswer(s, "w1", "lo")
	s = f.HandleAnswer(s, "w2", "hi")

	results := f.CalculateResults(s)

	// weak: 10/20 = 50, strong: 18/20 = 90.
	if results.Sections[0].Score != 90 || results.Sections[1].Score != 50 {
		t.Fatalf("unexpected section scores: %+v", results.Sections)
	}
	if results.OverallScore != 70 {
		t.Fatalf("expected overall 70, got %v", results.OverallScore)
	}
	if len(results.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %+v", results.Recommendations)
	}

	rec := results.Recommendations[0]
	if rec.SectionID != "weak" || rec.Priority != PriorityMedium {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if rec.FocusQuestionID != "w1" {
		t.Fatalf("expected focus on the weakest question, got %q", rec.FocusQuestionID)
	}
	if !strings.Contains(rec.Message, "Weak scored 50/100") || !strings.Contains(rec.Message, "Map the plots.") {
		t.Fatalf("unexpected message: %q", rec.Message)
	}
}

func TestCalculateResultsMeanOfSections(t *testing.T) {
	catalog := &Catalog{Sections: []Section{
		{ID: "a", Title: "A", Questions: []Question{
			{ID: "a1", Options: []Option{{ID: "x", Weight: 4}, {ID: "max", Weight: 10}}},
		}},
		{ID: "b", Title: "B", Questions: []Question{
			{ID: "b1", Options: []Option{{ID: "x", Weight: 9}, {ID: "max", Weight: 10}}},
			{ID: "b2", Options: []Option{{ID: "x", Weight: 9}, {ID: "max", Weight: 10}}},
		}},
	}}
	f := NewFlow(catalog)

	s := answerAll(f, f.Start(), "x")
	results := f.CalculateResults(s)

	if results.Sections[0].Score != 40 || results.Sections[1].Score != 90 {
		t.Fatalf("unexpected section scores: %+v", results.Sections)
	}
	// Sections weigh the same regardless of their question count.
	if results.OverallScore != 65 {
		t.Fatalf("expected overall 65, got %v", results.OverallScore)
	}
	if len(results.Recommendations) != 1 || results.Recommendations[0].SectionID != "a" {
		t.Fatalf("expected section A guidance first, got %+v", results.Recommendations)
	}
}

func TestUnansweredQuestionsCountAsZero(t *testing.T) {
	f := NewFlow(twoByTwo())
	s := f.HandleAnswer(f.Start(), "a1", "full")

	results := f.CalculateResults(s)
	if results.Sections[0].Score != 50 || results.Sections[0].Answered != 1 {
		t.Fatalf("unexpected section A: %+v", results.Sections[0])
	}
	if results.Sections[1].Score != 0 {
		t.Fatalf("unexpected section B: %+v", results.Sections[1])
	}
	if results.OverallScore != 25 {
		t.Fatalf("expected overall 25, got %v", results.OverallScore)
	}
	if results.Recommendations[0].SectionID != "b" {
		t.Fatalf("expected section B first, got %+v", results.Recommendations)
	}
	if !strings.Contains(results.Recommendations[0].Message, defaultGuidance) {
		t.Fatalf("expected default guidance, got %q", results.Recommendations[0].Message)
	}
}

func TestZeroWeightSectionScoresZero(t *testing.T) {
	catalog := &Catalog{Sections: []Section{{ID: "z", Title: "Z", Questions: []Question{
		{ID: "z1", Options: []Option{{ID: "only", Weight: 0}}},
	}}}}
	f := NewFlow(catalog)

	results := f.CalculateResults(f.HandleAnswer(f.Start(), "z1", "only"))
	if results.OverallScore != 0 {
		t.Fatalf("expected 0, got %v", results.OverallScore)
	}
	if results.Recommendations[0].FocusQuestionID != "" {
		t.Fatalf("expected no focus question without weights")
	}
}
