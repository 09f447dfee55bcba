package rag

import (
	"fmt"
	"strings"

	"edu-rag/internal/models"
)

// BuildPrompt joins the retrieved chunks and the query into one prompt. The
// closing instruction depends on the content type; difficulty is only
// mentioned for question papers and assignments.
func BuildPrompt(q models.Query, chunks []string) string {
	var b strings.Builder

	if q.Grade != "" {
		b.WriteString(fmt.Sprintf(models.PromptHeaderTemplate, q.Grade))
	}
	if q.Chapter != "" {
		b.WriteString(fmt.Sprintf(models.PromptChapterTemplate, q.Chapter))
	}
	b.WriteString(fmt.Sprintf(models.PromptBodyTemplate, q.Text, strings.Join(chunks, " ")))

	if models.UsesDifficulty(q.ContentType) {
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = models.DifficultyMedium
		}
		b.WriteString(fmt.Sprintf(models.PromptDifficultyTemplate, difficulty))
	}
	if instruction, ok := models.ContentInstructions[q.ContentType]; ok {
		b.WriteString(instruction)
	}

	return strings.TrimRight(b.String(), "\n")
}
