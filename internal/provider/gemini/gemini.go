// Package gemini implements provider.Provider on the Google Gemini API.
package gemini

import (
	"context"
	"errors"

	"github.com/Cyclone1070/claw/internal/provider"
)

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client       GeminiClient
	defaultModel string
}

var ErrNoModel = errors.New("no model specified")

// New creates a provider. defaultModel is used when a request names none.
func New(client GeminiClient, defaultModel string) *GeminiProvider {
	if client == nil {
		panic("client is required")
	}
	return &GeminiProvider{client: client, defaultModel: defaultModel}
}

// Chat sends one request and returns the model's text or tool calls.
func (p *GeminiProvider) Chat(ctx context.Context, req provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "no model", Underlying: ErrNoModel}
	}

	contents, system := toGeminiContents(req.Messages)
	config := toGeminiConfig(req.Temperature, system, req.Tools)

	resp, err := p.client.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return fromGeminiResponse(resp)
}

// ListModels lists the chat models available to the API key.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return models, nil
}
