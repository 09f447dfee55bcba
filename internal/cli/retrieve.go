package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"edu-rag/internal/models"
)

var (
	retrieveText string
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Show the indexed chunks closest to a query",
	Long: `Search the vector index without calling the inference model.

Examples:
  edu-rag retrieve -q "photosynthesis"
  edu-rag retrieve -q "friction" -k 3 --json`,
	RunE: runRetrieve,
}

func init() {
	rootCmd.AddCommand(retrieveCmd)
	retrieveCmd.Flags().StringVarP(&retrieveText, "query", "q", "", "search query (required)")
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of results (default from config)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output as JSON")
	_ = retrieveCmd.MarkFlagRequired("query")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRAG(ctx, false)
	if err != nil {
		return err
	}

	chunks, err := r.Retrieve(ctx, retrieveText, retrieveTopK)
	if err != nil {
		return err
	}

	if retrieveJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(chunks)
	}

	if len(chunks) == 0 {
		log.Warn().Msg(models.ErrNoResults.Error())
		return nil
	}
	for i, c := range chunks {
		fmt.Printf("%d. chunk %d (similarity %.4f)\n%s\n\n", i+1, c.ChunkID, c.Similarity, c.Content)
	}
	return nil
}
