package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"edu-rag/internal/models"
	"edu-rag/internal/parser"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the plain text extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := parser.ExtractText(args[0])
		if errors.Is(err, models.ErrEmptyExtraction) {
			log.Warn().Str("file", args[0]).Msg(models.ErrEmptyExtraction.Error())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
