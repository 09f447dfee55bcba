package models

import "strings"

// content types offered to the user
const (
	ContentSyllabusPlan      = "Syllabus Plan"
	ContentQuestionPaper     = "Question Paper"
	ContentAssignments       = "Assignments"
	ContentTopicExplanations = "Topic Explanations"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// splitter names accepted in rag.splitter
const (
	SplitterWindow    = "window"
	SplitterRecursive = "recursive"
)

// metadata keys stored with every indexed chunk
const (
	MetaChunkID = "chunk_id"
	MetaSource  = "source"
	MetaModel   = "model"
	MetaDim     = "dim"
)

const DefaultTopK = 5

var (
	ContentTypes = []string{ContentSyllabusPlan, ContentQuestionPaper, ContentAssignments, ContentTopicExplanations}
	Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
)

// ParseContentType accepts "question-paper", "question paper", "Question Paper", ...
func ParseContentType(s string) (string, bool) {
	return matchName(s, ContentTypes)
}

// ParseDifficulty accepts any casing of Easy, Medium or Hard.
func ParseDifficulty(s string) (string, bool) {
	return matchName(s, Difficulties)
}

// UsesDifficulty reports whether the difficulty level applies to a content type.
func UsesDifficulty(contentType string) bool {
	return contentType == ContentQuestionPaper || contentType == ContentAssignments
}

func matchName(s string, names []string) (string, bool) {
	norm := normalizeName(s)
	for _, name := range names {
		if normalizeName(name) == norm {
			return name, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

const (
	// ThinkTag matches reasoning blocks some models prepend to their answer.
	ThinkTag = `(?s)<think>.*?</think>`
)

var (
	PromptHeaderTemplate = `You are an AI assistant helping to generate structured educational content for Grade %s.
`
	PromptChapterTemplate = `Chapter: %s
`
	PromptBodyTemplate = `User Query: %s
Retrieved Content: %s
`
	PromptDifficultyTemplate = `Difficulty Level: %s
`

	// instruction appended per content type
	ContentInstructions = map[string]string{
		ContentTopicExplanations: "Generate a **detailed and structured explanation** for this topic.",
		ContentSyllabusPlan:      "Generate a **week-by-week syllabus plan** covering this content, with learning objectives for each week.",
		ContentQuestionPaper:     "Generate a **question paper** based on this content, with marks for each question and an answer key at the end.",
		ContentAssignments:       "Generate **assignments** based on this content, mixing short-answer and activity-based tasks.",
	}
)
