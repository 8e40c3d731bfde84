package assessment

import (
	"maps"

	"github.com/google/uuid"
)

// Response is the recorded answer to one question.
type Response struct {
	OptionID string  `json:"optionId"`
	Weight   float64 `json:"weight"`
}

// State is the runtime state of one assessment session. It is a plain value:
// every transition returns a new State and leaves its input untouched.
type State struct {
	SessionID      string              `json:"sessionId"`
	CurrentSection int                 `json:"currentSection"`
	Responses      map[string]Response `json:"responses"`
	IsComplete     bool                `json:"isComplete"`
	Results        *Results            `json:"results,omitempty"`
}

func (s State) clone() State {
	next := s
	next.Responses = make(map[string]Response, len(s.Responses)+1)
	maps.Copy(next.Responses, s.Responses)
	return next
}

// Flow drives assessment sessions over one catalog. It holds no session
// state and can be shared between sessions.
type Flow struct {
	catalog *Catalog
}

func NewFlow(catalog *Catalog) *Flow {
	if catalog == nil {
		catalog = &Catalog{}
	}
	return &Flow{catalog: catalog}
}

func (f *Flow) Catalog() *Catalog {
	return f.catalog
}

// Start returns the initial state of a new session.
func (f *Flow) Start() State {
	return State{
		SessionID: uuid.NewString(),
		Responses: map[string]Response{},
	}
}

// HandleAnswer records the option selected for a question, replacing any
// earlier answer. Any question of the catalog may be answered regardless of
// the current section. Unknown questions or options leave the state unchanged,
// as does any call after completion.
func (f *Flow) HandleAnswer(s State, questionID, optionID string) State {
	if s.IsComplete {
		return s
	}

	question, ok := f.catalog.Question(questionID)
	if !ok {
		return s
	}

	option, ok := question.Option(optionID)
	if !ok {
		return s
	}

	next := s.clone()
	next.Responses[questionID] = Response{OptionID: option.ID, Weight: option.Weight}
	return next
}

// CanProceed reports whether every question of the current section has an
// answer. A catalog without sections can always proceed.
func (f *Flow) CanProceed(s State) bool {
	if s.CurrentSection < 0 || s.CurrentSection >= f.catalog.SectionCount() {
		return f.catalog.SectionCount() == 0
	}

	for _, question := range f.catalog.Sections[s.CurrentSection].Questions {
		if _, ok := s.Responses[question.ID]; !ok {
			return false
		}
	}
	return true
}

// NextSection advances to the next section. On the last section it completes
// the session and stores the results. The state is returned unchanged when
// the current section is not fully answered or the session is complete.
func (f *Flow) NextSection(s State) State {
	if s.IsComplete || !f.CanProceed(s) {
		return s
	}

	next := s.clone()
	if s.CurrentSection >= f.catalog.SectionCount()-1 {
		results := CalculateResults(f.catalog, s.Responses)
		next.IsComplete = true
		next.Results = &results
		return next
	}

	next.CurrentSection++
	return next
}

// PrevSection goes back one section, stopping at the first one.
func (f *Flow) PrevSection(s State) State {
	if s.IsComplete || s.CurrentSection <= 0 {
		return s
	}

	next := s.clone()
	next.CurrentSection--
	return next
}

// Progress is the share of catalog questions that have an answer, in [0, 1].
func (f *Flow) Progress(s State) float64 {
	total := f.catalog.TotalQuestions()
	if total == 0 {
		return 0
	}

	answered := 0
	for _, section := range f.catalog.Sections {
		for _, question := range section.Questions {
			if _, ok := s.Responses[question.ID]; ok {
				answered++
			}
		}
	}
	return float64(answered) / float64(total)
}

// CalculateResults scores the responses of a session against the flow catalog.
func (f *Flow) CalculateResults(s State) Results {
	return CalculateResults(f.catalog, s.Responses)
}
