package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"edu-rag/internal/config"
	"edu-rag/internal/embedding"
	"edu-rag/internal/llmservice"
	"edu-rag/internal/rag"
)

const defaultConfigFilePath = "./configs/config.yaml"

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "edu-rag",
	Short: "Generate educational content from an uploaded textbook",
	Long: `edu-rag extracts the text of a textbook, indexes it in a local vector index
and asks a hosted language model for syllabus plans, question papers,
assignments and topic explanations grounded in the retrieved text.

Example usage:
  edu-rag index "science class 6.pdf"
  edu-rag query -q "unit of length" --type "Question Paper" --difficulty Hard
  edu-rag retrieve -q "photosynthesis" -k 3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// secrets usually live in .env next to the config
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Error loading .env file")
		}

		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		if debug {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)

		log.Debug().
			Str("config", cfgFile).
			Str("embed_provider", cfg.EmbedLLM.Provider).
			Str("inference_provider", cfg.InferenceLLM.Provider).
			Int("chunk_size", cfg.RAG.ChunkSize).
			Int("chunk_overlap", cfg.RAG.ChunkOverlap).
			Str("index", cfg.RAG.IndexPath).
			Msg("Loaded config")
		return nil
	},
}

// ExecuteContext runs the root command; cancelling ctx aborts in-flight
// embedding and generation requests.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFilePath, "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// newRAG builds the pipeline; the inference model is only created when
// withLLM is set.
func newRAG(ctx context.Context, withLLM bool) (*rag.RAG, error) {
	embedder, err := embedding.NewEmbedder(ctx, &cfg.EmbedLLM, cfg.RAG.EmbedBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	if !withLLM {
		return rag.NewRAG(embedder, nil, cfg), nil
	}
	llm, err := llmservice.NewClient(ctx, &cfg.InferenceLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return rag.NewRAG(embedder, llm, cfg), nil
}
