package llmservice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"edu-rag/internal/config"
	"edu-rag/internal/models"
)

// Client is a remote model that can both generate text and embed it.
type Client interface {
	llms.Model
	embeddings.EmbedderClient
}

var thinkTagRe = regexp.MustCompile(models.ThinkTag)

// NewClient creates the provider client described by llmConfig.
func NewClient(ctx context.Context, llmConfig *config.LLMConfig) (Client, error) {
	log.Debug().
		Str("provider", llmConfig.Provider).
		Str("base_url", llmConfig.BaseURL).
		Str("model", llmConfig.Model).
		Msg("Creating LLM client")

	switch llmConfig.Provider {
	case config.ProviderGoogleAI:
		opts := []googleai.Option{
			googleai.WithDefaultModel(llmConfig.Model),
			googleai.WithDefaultEmbeddingModel(llmConfig.Model),
		}
		if key := llmConfig.APIKey(); key != "" {
			opts = append(opts, googleai.WithAPIKey(key))
		}
		return googleai.New(ctx, opts...)
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(llmConfig.Model),
			openai.WithEmbeddingModel(llmConfig.Model),
			openai.WithToken(strings.TrimPrefix(llmConfig.APIKey(), "Bearer ")),
		}
		if llmConfig.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
		}
		return openai.New(opts...)
	case config.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(llmConfig.Model)}
		if llmConfig.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(llmConfig.BaseURL))
		}
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", llmConfig.Provider)
	}
}

// call llm
func GenerateContent(ctx context.Context, llm llms.Model, tools []llms.Tool, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	var (
		res *llms.ContentResponse
		err error
	)
	if len(tools) > 0 {
		res, err = llm.GenerateContent(ctx, messages, llms.WithTools(tools))
	} else {
		res, err = llm.GenerateContent(ctx, messages)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExternalAPI, err)
	}
	return res, nil
}

// GenerateText sends prompt as a single human message and returns the first
// choice with any reasoning block removed.
func GenerateText(ctx context.Context, llm llms.Model, prompt string) (string, error) {
	msgContent := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := GenerateContent(ctx, llm, nil, msgContent)
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: %v", models.ErrExternalAPI, errors.New("empty response from model"))
	}
	return strings.TrimSpace(thinkTagRe.ReplaceAllString(res.Choices[0].Content, "")), nil
}
