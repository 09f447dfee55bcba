package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"edu-rag/internal/models"
	"edu-rag/internal/rag"
)

var (
	queryText       string
	queryGrade      string
	queryChapter    string
	queryType       string
	queryDifficulty string
	queryTopK       int
	queryHTML       bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Generate educational content from the indexed textbook",
	Long: `Retrieve the chunks closest to the query and ask the inference model for
the requested kind of content.

Content types: ` + strings.Join(models.ContentTypes, ", ") + `
Difficulty (question papers and assignments only): ` + strings.Join(models.Difficulties, ", ") + `

Examples:
  edu-rag query -q "magnets" --grade 6 --chapter "Fun with Magnets"
  edu-rag query -q "motion" --type "Question Paper" --difficulty Hard --html`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "topic or question (required)")
	queryCmd.Flags().StringVar(&queryGrade, "grade", "", "grade level, e.g. 6")
	queryCmd.Flags().StringVar(&queryChapter, "chapter", "", "chapter name")
	queryCmd.Flags().StringVarP(&queryType, "type", "t", models.ContentTopicExplanations, "content type")
	queryCmd.Flags().StringVarP(&queryDifficulty, "difficulty", "d", models.DifficultyMedium, "difficulty level")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().BoolVar(&queryHTML, "html", false, "render the answer as HTML")
	_ = queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRAG(ctx, true)
	if err != nil {
		return err
	}

	response, err := r.Query(ctx, models.Query{
		Text:        queryText,
		Grade:       queryGrade,
		Chapter:     queryChapter,
		ContentType: queryType,
		Difficulty:  queryDifficulty,
		TopK:        queryTopK,
	})
	if err != nil {
		return err
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	if response.Warning != "" {
		log.Warn().Msg(response.Warning)
		return nil
	}

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for i, s := range response.Source {
		fmt.Printf("[%d] %s\n\n", i+1, s)
	}

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	content := response.Content
	if queryHTML {
		content, err = rag.RenderHTML(content)
		if err != nil {
			return fmt.Errorf("failed to render answer: %w", err)
		}
	}
	fmt.Printf("%s\n\n", content)
	return nil
}
