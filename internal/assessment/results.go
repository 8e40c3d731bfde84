package assessment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RecommendationThreshold is the section score under which a recommendation
// is produced.
const RecommendationThreshold = 70.0

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"

	highPriorityBelow = 40.0
	defaultGuidance   = "Review the practices covered by this section and document the missing evidence."
)

type SectionScore struct {
	SectionID string  `json:"sectionId"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Answered  int     `json:"answered"`
	Questions int     `json:"questions"`
}

// Recommendation points at a weak section and the question inside it with the
// lowest relative score.
type Recommendation struct {
	SectionID       string  `json:"sectionId"`
	Title           string  `json:"title"`
	Score           float64 `json:"score"`
	Priority        string  `json:"priority"`
	FocusQuestionID string  `json:"focusQuestionId,omitempty"`
	FocusQuestion   string  `json:"focusQuestion,omitempty"`
	Message         string  `json:"message"`
}

type Results struct {
	OverallScore    float64          `json:"overallScore"`
	Sections        []SectionScore   `json:"sections"`
	Recommendations []Recommendation `json:"recommendations"`
}

// CalculateResults scores every section as the selected weight over the
// maximum possible weight, averages sections with equal weight and lists
// recommendations for sections below the threshold, worst first.
// An empty catalog yields a zero score without recommendations.
func CalculateResults(catalog *Catalog, responses map[string]Response) Results {
	results := Results{
		Sections:        []SectionScore{},
		Recommendations: []Recommendation{},
	}
	if catalog.SectionCount() == 0 {
		return results
	}

	total := 0.0
	for _, section := range catalog.Sections {
		score := scoreSection(section, responses)
		total += score.Score
		results.Sections = append(results.Sections, score)
	}
	results.OverallScore = round2(total / float64(len(catalog.Sections)))

	for i, section := range catalog.Sections {
		score := results.Sections[i].Score
		if score >= RecommendationThreshold {
			continue
		}
		results.Recommendations = append(results.Recommendations, recommend(section, score, responses))
	}

	sort.SliceStable(results.Recommendations, func(i, j int) bool {
		return results.Recommendations[i].Score < results.Recommendations[j].Score
	})

	return results
}

func scoreSection(section Section, responses map[string]Response) SectionScore {
	selected, possible := 0.0, 0.0
	answered := 0
	for _, question := range section.Questions {
		possible += question.MaxWeight()
		if weight, ok := answerWeight(question, responses); ok {
			selected += weight
			answered++
		}
	}

	score := 0.0
	if possible > 0 {
		score = round2(selected * 100 / possible)
	}

	return SectionScore{
		SectionID: section.ID,
		Title:     section.Title,
		Score:     score,
		Answered:  answered,
		Questions: len(section.Questions),
	}
}

func recommend(section Section, score float64, responses map[string]Response) Recommendation {
	priority := PriorityMedium
	if score < highPriorityBelow {
		priority = PriorityHigh
	}

	guidance := section.Guidance
	if guidance == "" {
		guidance = defaultGuidance
	}

	rec := Recommendation{
		SectionID: section.ID,
		Title:     section.Title,
		Score:     score,
		Priority:  priority,
		Message:   fmt.Sprintf("%s scored %.0f/100. %s", section.Title, score, guidance),
	}

	if focus, ok := weakestQuestion(section, responses); ok {
		rec.FocusQuestionID = focus.ID
		rec.FocusQuestion = focus.Text
	}

	return rec
}

// weakestQuestion returns the first question with the lowest share of its
// maximum weight. Unanswered questions count as zero.
func weakestQuestion(section Section, responses map[string]Response) (Question, bool) {
	var weakest Question
	found := false
	lowest := math.Inf(1)
	for _, question := range section.Questions {
		maxWeight := question.MaxWeight()
		if maxWeight <= 0 {
			continue
		}
		weight, _ := answerWeight(question, responses)
		if ratio := weight / maxWeight; ratio < lowest {
			lowest = ratio
			weakest = question
			found = true
		}
	}
	return weakest, found
}

// answerWeight resolves the weight of the recorded option from the catalog.
func answerWeight(question Question, responses map[string]Response) (float64, bool) {
	response, ok := responses[question.ID]
	if !ok {
		return 0, false
	}
	if option, ok := question.Option(response.OptionID); ok {
		return option.Weight, true
	}
	return response.Weight, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Record is a completed assessment prepared for persistence.
type Record struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	CooperativeID string    `json:"cooperativeId,omitempty"`
	Results       Results   `json:"results"`
	CompletedAt   time.Time `json:"completedAt"`
}

// NewRecord wraps the results of a completed session.
func NewRecord(s State, cooperativeID string, completedAt time.Time) (*Record, error) {
	if !s.IsComplete || s.Results == nil {
		return nil, fmt.Errorf("assessment session %s is not complete", s.SessionID)
	}

	return &Record{
		ID:            uuid.NewString(),
		SessionID:     s.SessionID,
		CooperativeID: cooperativeID,
		Results:       *s.Results,
		CompletedAt:   completedAt.UTC(),
	}, nil
}
