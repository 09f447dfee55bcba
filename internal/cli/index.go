package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"edu-rag/internal/helper"
	"edu-rag/internal/models"
	"edu-rag/internal/parser"
)

var indexDryRun bool

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Upload a textbook and rebuild the vector index from it",
	Long: `Copy the document into the upload folder, extract its text, split it into
overlapping chunks, embed them and replace the vector index.

Supported formats: pdf, docx, xlsx, xlsm, xltx, xltm, txt, md.

Examples:
  edu-rag index "science class 6.pdf"
  edu-rag index notes.docx --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "extract and chunk only, do not embed or write the index")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if indexDryRun {
		return dryRunIndex(args[0])
	}

	saved, err := parser.SaveUploadFile(cfg.RAG.UploadDir, args[0])
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	log.Info().Str("file", saved).Msg("Document uploaded")

	r, err := newRAG(ctx, false)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	}

	result, err := r.IndexFile(ctx, saved, progress)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if result.Warning != "" {
		log.Warn().Str("file", saved).Msg(result.Warning)
	}
	fmt.Printf("%d chunks created and indexed.\n", result.Chunks)
	log.Debug().Str("index", result.IndexPath).Msg("Index written")
	return nil
}

// dryRunIndex extracts and chunks a document without embedding it. A document
// without text is reported as zero chunks.
func dryRunIndex(filePath string) error {
	text, err := parser.ExtractText(filePath)
	if err != nil && !errors.Is(err, models.ErrEmptyExtraction) {
		return err
	}
	chunks, err := parser.NewChunker(cfg.RAG.Splitter, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap).Chunk(text)
	if errors.Is(err, models.ErrEmptyChunking) {
		log.Warn().Str("file", filePath).Msg(models.ErrEmptyChunking.Error())
		fmt.Println("0 chunks created.")
		return nil
	}
	if err != nil {
		return err
	}
	helper.PrettyPrint(chunks)
	fmt.Printf("%d chunks created.\n", len(chunks))
	return nil
}
