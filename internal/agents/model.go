package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/config"
)

// ChatModel is the slice of the eino chat model the personas need. Tests
// substitute a fake; production wires *openai.ChatModel.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// NewChatModel builds the OpenAI-compatible chat model from config.
func NewChatModel(ctx context.Context, cfg *config.Config) (*openai.ChatModel, error) {
	maxTokens := cfg.AI.MaxTokens
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   cfg.AI.BaseURL,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}
	return chatModel, nil
}
