package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Ark generates text with an eino chain over the Ark chat model. Decoding
// parameters are fixed when the chat model is created.
type Ark struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArk compiles the system+user prompt chain over chatModel.
func NewArk(ctx context.Context, chatModel model.BaseChatModel) (*Ark, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Ark{chain: runnable}, nil
}

// Name implements Backend.
func (a *Ark) Name() string { return "ark" }

// Generate implements Backend.
func (a *Ark) Generate(ctx context.Context, systemPrompt string, _ Params, message string) (string, error) {
	response, err := a.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", nil
	}
	return response.Content, nil
}
