package provider

import (
	"context"

	"charm.land/fantasy"

	"github.com/guilhermegouw/aurora/internal/config"
	"github.com/guilhermegouw/aurora/internal/gateway"
)

// Agent returns a fantasy agent over the model configured for task.
func (b *Builder) Agent(ctx context.Context, task config.ModelTask, systemPrompt string) (gateway.Agent, gateway.CallOptions, error) {
	lm, model, err := b.LanguageModel(ctx, task)
	if err != nil {
		return nil, gateway.CallOptions{}, err
	}

	var opts []fantasy.AgentOption
	if systemPrompt != "" {
		opts = append(opts, fantasy.WithSystemPrompt(systemPrompt))
	}

	return fantasy.NewAgent(lm, opts...), gateway.CallOptions{
		MaxOutputTokens: model.MaxTokens,
		Temperature:     model.Temperature,
	}, nil
}
