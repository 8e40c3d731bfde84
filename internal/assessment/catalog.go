package assessment

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Option struct {
	ID     string  `json:"optionId" mapstructure:"id"`
	Label  string  `json:"label" mapstructure:"label"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

type Question struct {
	ID      string   `json:"id" mapstructure:"id"`
	Text    string   `json:"text" mapstructure:"text"`
	Options []Option `json:"options" mapstructure:"options"`
}

// Section groups questions. Guidance is the advice attached to a
// recommendation when the section scores below the threshold.
type Section struct {
	ID          string     `json:"id" mapstructure:"id"`
	Title       string     `json:"title" mapstructure:"title"`
	Description string     `json:"description" mapstructure:"description"`
	Icon        string     `json:"icon" mapstructure:"icon"`
	Guidance    string     `json:"guidance,omitempty" mapstructure:"guidance"`
	Questions   []Question `json:"questions" mapstructure:"questions"`
}

// Catalog is the static questionnaire. It is configuration, never runtime state.
type Catalog struct {
	Sections []Section `json:"sections" mapstructure:"sections"`
}

// DefaultCatalog returns the built-in self-assessment questionnaire.
func DefaultCatalog() (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultCatalog)); err != nil {
		return nil, fmt.Errorf("reading default catalog: %w", err)
	}
	return decodeCatalog(v)
}

// LoadCatalog reads a catalog from a yaml or json file.
func LoadCatalog(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading catalog %q: %w", path, err)
	}
	return decodeCatalog(v)
}

func decodeCatalog(v *viper.Viper) (*Catalog, error) {
	var catalog Catalog
	if err := v.Unmarshal(&catalog); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}

// Validate checks the catalog invariants: unique section and question ids,
// no empty section or question and no negative weights.
func (c *Catalog) Validate() error {
	var errs []error
	sections := make(map[string]struct{})
	questions := make(map[string]struct{})

	for i, section := range c.Sections {
		if strings.TrimSpace(section.ID) == "" {
			errs = append(errs, fmt.Errorf("section %d has no id", i))
		} else if _, ok := sections[section.ID]; ok {
			errs = append(errs, fmt.Errorf("duplicate section id %q", section.ID))
		}
		sections[section.ID] = struct{}{}

		if len(section.Questions) == 0 {
			errs = append(errs, fmt.Errorf("section %q has no questions", section.ID))
		}

		for _, question := range section.Questions {
			if strings.TrimSpace(question.ID) == "" {
				errs = append(errs, fmt.Errorf("question without id in section %q", section.ID))
				continue
			}
			if _, ok := questions[question.ID]; ok {
				errs = append(errs, fmt.Errorf("duplicate question id %q", question.ID))
			}
			questions[question.ID] = struct{}{}

			if len(question.Options) == 0 {
				errs = append(errs, fmt.Errorf("question %q has no options", question.ID))
			}

			options := make(map[string]struct{})
			for _, option := range question.Options {
				if _, ok := options[option.ID]; ok {
					errs = append(errs, fmt.Errorf("duplicate option id %q in question %q", option.ID, question.ID))
				}
				options[option.ID] = struct{}{}
				if option.Weight < 0 {
					errs = append(errs, fmt.Errorf("option %q of question %q has negative weight", option.ID, question.ID))
				}
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Catalog) SectionCount() int {
	if c == nil {
		return 0
	}
	return len(c.Sections)
}

func (c *Catalog) TotalQuestions() int {
	total := 0
	for _, section := range c.Sections {
		total += len(section.Questions)
	}
	return total
}

// Question looks up a question by id across all sections.
func (c *Catalog) Question(id string) (*Question, bool) {
	for i := range c.Sections {
		for j := range c.Sections[i].Questions {
			if c.Sections[i].Questions[j].ID == id {
				return &c.Sections[i].Questions[j], true
			}
		}
	}
	return nil, false
}

func (q *Question) Option(id string) (Option, bool) {
	for _, option := range q.Options {
		if option.ID == id {
			return option, true
		}
	}
	return Option{}, false
}

// MaxWeight is the highest weight any option of the question carries.
func (q *Question) MaxWeight() float64 {
	best := 0.0
	for _, option := range q.Options {
		best = max(best, option.Weight)
	}
	return best
}
