package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/directory"
	"github.com/agrosoluce/agrosoluce/internal/logger"
	"github.com/agrosoluce/agrosoluce/internal/matching"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptSaveMatches     = "Save top matches"
	PromptReportByCountry = "Report by country"
	PromptMatchesToFile   = "Dump matched cooperatives to file"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptSaveMatches, PromptNo, PromptReportByCountry, PromptMatchesToFile},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank cooperatives against a buyer request",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("auto-approve", "y", false, "save the top matches without asking")
	matchCmd.Flags().StringP("request", "r", "", "a JSON file with the buyer request. Overrides the request section of the config")
	matchCmd.Flags().StringP("cooperatives-file", "c", "", "a JSON file with the cooperative directory")
	matchCmd.Flags().IntP("top", "n", defaultTop, "number of matches to show and save")

	viper.BindPFlag("cooperatives-file", matchCmd.Flags().Lookup("cooperatives-file"))
	viper.BindPFlag("top", matchCmd.Flags().Lookup("top"))
}

// runMatch loads the request and the directory, ranks the candidates and asks what to do with them.
func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the matching", zap.String("version", version))

	request, err := resolveRequest(cmd, config)
	if err != nil {
		logger.Fatal("loading buyer request", zap.Error(err))
	}

	if strings.TrimSpace(config.CooperativesFile) == "" {
		logger.Fatal("cooperatives file is required",
			zap.String("hint", "set AGROSOLUCE_COOPERATIVES_FILE, --cooperatives-file or the 'cooperatives-file' key in the configuration file"),
		)
	}

	cooperatives, err := directory.LoadCooperatives(config.CooperativesFile)
	if err != nil {
		logger.Fatal("loading cooperatives", zap.Error(err), zap.String("path", config.CooperativesFile))
	}

	logger.Info("cooperatives loaded",
		zap.Int("count", cooperatives.Len()),
		zap.Strings("commodities", cooperatives.Commodities()),
	)

	engine := matching.NewEngine(logger)
	logger = withRequest(logger, request)
	for _, status := range engine.Filters(request) {
		logger.Debug("hard filter", zap.String("name", status.Name), zap.Bool("active", status.Active), zap.Any("details", status.Details))
	}

	results := engine.Match(request, cooperatives)
	if len(results) == 0 {
		logger.Info("exiting", zap.String("reason", "no cooperatives passed the filters"))
		return
	}

	top := matching.Top(results, config.Top)
	printMatches(top)

	action := PromptSaveMatches
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = matchPrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleMatchAction(ctx, action, logger, config, request, top); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(ctx context.Context, action string, logger *zap.Logger, config *Config, request *directory.BuyerRequest, top []matching.MatchResult) error {
	switch action {
	case PromptSaveMatches:
		if err := saveMatches(ctx, logger, config, request, top); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByCountry:
		pretty, _ := json.MarshalIndent(matching.ReportByCountry(top), "", "  ")
		fmt.Println(string(pretty))
	case PromptMatchesToFile:
		shortlist := &directory.Cooperatives{}
		for _, m := range top {
			shortlist.Items = append(shortlist.Items, m.Cooperative)
		}
		file, err := shortlist.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matched cooperatives: %w", err)
		}
		logger.Info("matched cooperatives dumped", zap.String("file", file))
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func saveMatches(ctx context.Context, logger *zap.Logger, config *Config, request *directory.BuyerRequest, top []matching.MatchResult) error {
	s, err := openStore(ctx, config.Store, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	if err := s.SaveMatches(ctx, request.ID, top); err != nil {
		return err
	}

	logger.Info("top matches saved", zap.String("request_id", request.ID), zap.Int("count", len(top)))
	return nil
}

// resolveRequest prefers the --request file over the request section of the config.
func resolveRequest(cmd *cobra.Command, config *Config) (*directory.BuyerRequest, error) {
	var request *directory.BuyerRequest

	if path := cmd.Flag("request").Value.String(); path != "" {
		loaded, err := directory.LoadRequest(path)
		if err != nil {
			return nil, err
		}
		request = loaded
	} else if config.Request != nil {
		request = config.Request
		request.Normalize()
	}

	if request == nil {
		return nil, errors.New("buyer request is required: use --request or the 'request' section of the config")
	}
	if strings.TrimSpace(request.ID) == "" {
		return nil, errors.New("buyer request id is required")
	}
	if strings.TrimSpace(request.Commodity) == "" {
		return nil, errors.New("buyer request commodity is required")
	}

	return request, nil
}

func withRequest(l *zap.Logger, request *directory.BuyerRequest) *zap.Logger {
	return logger.WithFields(l, logger.RequestFields(request)...)
}

func printMatches(results []matching.MatchResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tNAME\tCOUNTRY\tREASONS")
	for _, m := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.MatchScore,
			m.Cooperative.ID,
			m.Cooperative.Name,
			m.Cooperative.Country,
			strings.Join(m.Reasons, "; "),
		)
	}
	w.Flush()
}
