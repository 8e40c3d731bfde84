package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the assessment questionnaire outline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cmd.Flag("catalog-file").Value.String()
		if path == "" {
			path = viper.GetString("catalog-file")
		}

		catalog, err := resolveCatalog(path)
		if err != nil {
			return err
		}

		verbose := cmd.Flag("verbose").Value.String() == "true"
		printCatalog(catalog, verbose)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().String("catalog-file", "", "a YAML or JSON questionnaire replacing the built-in one")
	catalogCmd.Flags().BoolP("verbose", "v", false, "print questions and option weights")
}

func printCatalog(catalog *assessment.Catalog, verbose bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%d sections, %d questions\n", catalog.SectionCount(), catalog.TotalQuestions())
	for _, section := range catalog.Sections {
		fmt.Fprintf(w, "%s\t%s\t%d questions\n", section.ID, strings.TrimSpace(section.Icon+" "+section.Title), len(section.Questions))
		if !verbose {
			continue
		}
		for _, question := range section.Questions {
			fmt.Fprintf(w, "\t%s\t%s\n", question.ID, question.Text)
			for _, option := range question.Options {
				fmt.Fprintf(w, "\t\t%s (%s)\t%g\n", option.Label, option.ID, option.Weight)
			}
		}
	}
}
