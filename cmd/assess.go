package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
	"github.com/agrosoluce/agrosoluce/internal/directory"
	"github.com/agrosoluce/agrosoluce/internal/logger"
)

const (
	PromptNext   = "Next section"
	PromptFinish = "Finish and show results"
	PromptBack   = "Back"
	PromptRedo   = "Answer this section again"
	PromptQuit   = "Quit without saving"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the compliance self-assessment for a cooperative",
	Run: func(cmd *cobra.Command, _ []string) {
		runAssess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().BoolP("auto-approve", "y", false, "save the results without asking")
	assessCmd.Flags().StringP("cooperative", "c", "", "id of the cooperative being assessed")
	assessCmd.Flags().String("catalog-file", "", "a YAML or JSON questionnaire replacing the built-in one")

	viper.BindPFlag("catalog-file", assessCmd.Flags().Lookup("catalog-file"))
}

func runAssess(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	catalog, err := resolveCatalog(config.CatalogFile)
	if err != nil {
		logger.Fatal("loading assessment catalog", zap.Error(err))
	}

	cooperativeID := strings.TrimSpace(cmd.Flag("cooperative").Value.String())
	lookupCooperative(logger, config, cooperativeID)

	flow := assessment.NewFlow(catalog)
	state := flow.Start()

	logger = withSession(logger, state.SessionID, cooperativeID)
	logger.Info("starting the assessment",
		zap.String("version", version),
		zap.Int("sections", catalog.SectionCount()),
		zap.Int("questions", catalog.TotalQuestions()),
	)

	state, err = runQuestionnaire(flow, state)
	if err != nil {
		if errors.Is(err, errExit) {
			logger.Info("exiting", zap.String("reason", "assessment abandoned"))
			return
		}
		logger.Fatal("exiting", zap.Error(err))
	}

	printResults(*state.Results)

	if config.AI != nil && config.AI.Enabled {
		advise(ctx, logger, config.AI, catalog, *state.Results)
	}

	record, err := assessment.NewRecord(state, cooperativeID, time.Now())
	if err != nil {
		logger.Fatal("building assessment record", zap.Error(err))
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		confirm := promptui.Select{Label: "Save the results?", Items: []string{PromptYes, PromptNo}}
		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	s, err := openStore(ctx, config.Store, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer s.Close()

	if err := s.SaveAssessment(ctx, record); err != nil {
		logger.Fatal("saving assessment", zap.Error(err))
	}

	logger.Info("assessment completed", zap.Float64("overall_score", record.Results.OverallScore))
}

// runQuestionnaire walks the sections until the session completes.
func runQuestionnaire(flow *assessment.Flow, state assessment.State) (assessment.State, error) {
	catalog := flow.Catalog()

	for !state.IsComplete {
		if state.CurrentSection >= catalog.SectionCount() {
			state = flow.NextSection(state)
			continue
		}

		section := catalog.Sections[state.CurrentSection]
		fmt.Printf("\n%s %s (%d/%d, %.0f%% answered)\n",
			section.Icon, section.Title, state.CurrentSection+1, catalog.SectionCount(), flow.Progress(state)*100)
		if section.Description != "" {
			fmt.Println(section.Description)
		}

		for _, question := range section.Questions {
			next, err := askQuestion(flow, state, question)
			if err != nil {
				return state, err
			}
			state = next
		}

		action, err := askNavigation(flow, state)
		if err != nil {
			return state, err
		}

		switch action {
		case PromptNext, PromptFinish:
			state = flow.NextSection(state)
		case PromptBack:
			state = flow.PrevSection(state)
		case PromptRedo:
		case PromptQuit:
			return state, errExit
		}
	}

	return state, nil
}

func askQuestion(flow *assessment.Flow, state assessment.State, question assessment.Question) (assessment.State, error) {
	labels := make([]string, 0, len(question.Options))
	cursor := 0
	for i, option := range question.Options {
		labels = append(labels, option.Label)
		if answer, ok := state.Responses[question.ID]; ok && answer.OptionID == option.ID {
			cursor = i
		}
	}

	selectPrompt := promptui.Select{
		Label:     question.Text,
		Items:     labels,
		CursorPos: cursor,
	}

	idx, _, err := selectPrompt.Run()
	if err != nil {
		return state, err
	}

	return flow.HandleAnswer(state, question.ID, question.Options[idx].ID), nil
}

func askNavigation(flow *assessment.Flow, state assessment.State) (string, error) {
	items := make([]string, 0, 4)
	if flow.CanProceed(state) {
		if state.CurrentSection == flow.Catalog().SectionCount()-1 {
			items = append(items, PromptFinish)
		} else {
			items = append(items, PromptNext)
		}
	}
	if state.CurrentSection > 0 {
		items = append(items, PromptBack)
	}
	items = append(items, PromptRedo, PromptQuit)

	nav := promptui.Select{Label: "Continue?", Items: items}
	_, action, err := nav.Run()
	return action, err
}

func advise(ctx context.Context, logger *zap.Logger, cfg *AIConfig, catalog *assessment.Catalog, results assessment.Results) {
	advisor, err := newAIAdvisor(ctx, cfg, logger)
	if err != nil {
		logger.Warn("skipping AI advice", zap.Error(err))
		return
	}

	narrative, err := advisor.Advise(ctx, catalog, results)
	if err != nil {
		logger.Warn("AI advice failed, showing the built-in recommendations only", zap.Error(err))
		return
	}

	fmt.Printf("\nAdvisor summary:\n%s\n", narrative.Summary)
	for i, action := range narrative.Actions {
		fmt.Printf("  %d. %s\n", i+1, action)
	}
}

// resolveCatalog loads the built-in catalog or the one at path. Both loaders validate.
func resolveCatalog(path string) (*assessment.Catalog, error) {
	var (
		catalog *assessment.Catalog
		err     error
	)
	if strings.TrimSpace(path) == "" {
		catalog, err = assessment.DefaultCatalog()
	} else {
		catalog, err = assessment.LoadCatalog(path)
	}
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// lookupCooperative logs the assessed cooperative when a directory is configured.
func lookupCooperative(l *zap.Logger, config *Config, cooperativeID string) {
	if cooperativeID == "" || strings.TrimSpace(config.CooperativesFile) == "" {
		return
	}

	cooperatives, err := directory.LoadCooperatives(config.CooperativesFile)
	if err != nil {
		l.Warn("loading cooperatives", zap.Error(err))
		return
	}

	cooperative := cooperatives.FindByID(cooperativeID)
	if cooperative == nil {
		l.Warn("cooperative not found in directory", zap.String(logger.FieldCooperativeID, cooperativeID))
		return
	}

	l.Info("assessing cooperative", append(logger.CooperativeFields(cooperative), zap.String("name", cooperative.Name))...)
}

func withSession(l *zap.Logger, sessionID, cooperativeID string) *zap.Logger {
	return logger.WithFields(l, logger.SessionFields(sessionID, cooperativeID)...)
}

func printResults(results assessment.Results) {
	fmt.Printf("\nOverall score: %.2f/100\n", results.OverallScore)
	for _, section := range results.Sections {
		fmt.Printf("  %-40s %6.2f  (%d/%d answered)\n", section.Title, section.Score, section.Answered, section.Questions)
	}

	if len(results.Recommendations) == 0 {
		fmt.Println("\nNo recommendations, every section is at or above the threshold.")
		return
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range results.Recommendations {
		fmt.Printf("  [%s] %s\n", rec.Priority, rec.Message)
		if rec.FocusQuestion != "" {
			fmt.Printf("         start with: %s\n", rec.FocusQuestion)
		}
	}
}
