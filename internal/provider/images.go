package provider

import (
	"context"
	"fmt"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/guilhermegouw/aurora/internal/config"
	"github.com/guilhermegouw/aurora/internal/gateway"
)

// openAIImages generates images through the OpenAI Images API.
type openAIImages struct {
	client openai.Client
	model  string
}

// GenerateImage implements gateway.ImageGenerator.
func (g *openAIImages) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, "", fmt.Errorf("generating image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, "", gateway.ErrNoImage
	}
	data, err := gateway.DecodeBase64Image(resp.Data[0].B64JSON)
	if err != nil {
		return nil, "", err
	}
	return data, "image/png", nil
}

// ImageGenerator returns the generator for the configured image model.
// Building it never fails; an unusable configuration fails each request.
func (b *Builder) ImageGenerator() gateway.ImageGenerator {
	model, providerCfg, err := b.Selection(config.TaskImage)
	if err != nil {
		return unavailableImages{err: err}
	}

	//nolint:exhaustive // Only OpenAI-compatible endpoints serve the Images API.
	switch providerCfg.Type {
	case catwalk.TypeOpenAI, catwalk.TypeOpenAICompat:
	default:
		return unavailableImages{err: fmt.Errorf("%w: provider %q cannot generate images", ErrNotConfigured, providerCfg.ID)}
	}

	opts := []option.RequestOption{option.WithAPIKey(providerCfg.APIKey)}
	if providerCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(providerCfg.BaseURL))
	}
	for k, v := range providerCfg.ExtraHeaders {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &openAIImages{
		client: openai.NewClient(opts...),
		model:  model.Model,
	}
}

type unavailableImages struct{ err error }

func (u unavailableImages) GenerateImage(context.Context, string) ([]byte, string, error) {
	return nil, "", u.err
}
