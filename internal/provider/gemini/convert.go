package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/tool"
	"google.golang.org/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// toGeminiContents converts the history to Gemini contents. System messages
// are joined into the returned system instruction.
//
// A run of tool messages from one model response becomes a model turn holding
// the preamble text and function calls, followed by a user turn holding the
// function responses. Calls already sent by a preceding assistant message are
// not repeated.
func toGeminiContents(history []provider.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
		sent     = map[string]bool{}
	)

	for i := 0; i < len(history); i++ {
		msg := history[i]
		switch msg.Role {
		case provider.RoleSystem:
			if msg.Content != "" {
				system = append(system, msg.Content)
			}

		case provider.RoleUser:
			if msg.Content != "" {
				contents = append(contents, genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(msg.Content)}, roleUser))
			}

		case provider.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, functionCallPart(tc))
				sent[tc.ID] = true
			}
			if len(parts) > 0 {
				contents = append(contents, genai.NewContentFromParts(parts, roleModel))
			}

		case provider.RoleTool:
			j := i + 1
			for j < len(history) && history[j].Role == provider.RoleTool && history[j].Iteration == msg.Iteration {
				j++
			}
			contents = append(contents, toolRun(history[i:j], sent)...)
			i = j - 1
		}
	}

	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(strings.Join(system, "\n\n"))}, roleUser)
}

func toolRun(msgs []provider.Message, sent map[string]bool) []*genai.Content {
	var calls, responses []*genai.Part
	for _, m := range msgs {
		if m.Call == nil {
			responses = append(responses, genai.NewPartFromText(fmt.Sprintf("Tool result (%s):\n%s", m.ToolCallID, m.Content)))
			continue
		}
		if !sent[m.Call.ID] {
			calls = append(calls, functionCallPart(*m.Call))
		}
		part := genai.NewPartFromFunctionResponse(m.Call.Function.Name, map[string]any{"output": m.Content})
		part.FunctionResponse.ID = providerID(m.Call.ID)
		responses = append(responses, part)
	}

	var out []*genai.Content
	if len(calls) > 0 {
		if msgs[0].Preamble != "" {
			calls = append([]*genai.Part{genai.NewPartFromText(msgs[0].Preamble)}, calls...)
		}
		out = append(out, genai.NewContentFromParts(calls, roleModel))
	}
	return append(out, genai.NewContentFromParts(responses, roleUser))
}

func functionCallPart(tc provider.ToolCall) *genai.Part {
	var args map[string]any
	if len(tc.Function.Arguments) > 0 {
		_ = json.Unmarshal(tc.Function.Arguments, &args)
	}
	part := genai.NewPartFromFunctionCall(tc.Function.Name, args)
	part.FunctionCall.ID = providerID(tc.ID)
	return part
}

// generatedIDPrefix marks call ids assigned locally; they are not sent back.
const generatedIDPrefix = "call_"

func providerID(id string) string {
	if strings.HasPrefix(id, generatedIDPrefix) {
		return ""
	}
	return id
}

// toGeminiConfig builds the request config.
func toGeminiConfig(temperature float64, system *genai.Content, tools []tool.Declaration) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(temperature)),
		SystemInstruction: system,
		SafetySettings:    defaultSafetySettings(),
	}
	if len(tools) > 0 {
		config.Tools = toGeminiTools(tools)
	}
	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	fds := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		fds = append(fds, fd)
	}
	return []*genai.Tool{{FunctionDeclarations: fds}}
}

func toGeminiSchema(s *tool.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGeminiSchema(s.Items)
	}
	return out
}

func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts Gemini response to internal format.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, &provider.ProviderError{
				Code:       provider.ErrorCodeContentBlocked,
				Message:    fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
				Underlying: provider.ErrContentBlocked,
			}
		}
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    "no candidates in response",
			Underlying: provider.ErrEmptyResponse,
		}
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeContentBlocked,
			Message:    "content blocked by safety filters",
			Underlying: provider.ErrContentBlocked,
		}
	case genai.FinishReasonMaxTokens:
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeContextLength,
			Message:    "response truncated due to max tokens",
			Underlying: provider.ErrContextLengthExceeded,
		}
	}

	out := &provider.Response{}
	if candidate.Content == nil {
		return out, nil
	}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, &provider.ProviderError{Code: provider.ErrorCodeInvalidRequest, Message: "unencodable function arguments", Underlying: err}
			}
			out.ToolCalls = append(out.ToolCalls, provider.ToolCall{
				ID:       part.FunctionCall.ID,
				Function: provider.FunctionCall{Name: part.FunctionCall.Name, Arguments: args},
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	out.Text = text.String()
	return out, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
// Context errors are returned unchanged.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &provider.ProviderError{
			Code:       provider.ErrorCodeNetwork,
			Message:    "network error",
			Underlying: err,
			Retryable:  true,
		}
	}

	switch apiErr.Code {
	case 401, 403:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeAuth,
			Message:    "authentication failed",
			Underlying: errors.Join(provider.ErrAuthentication, err),
		}
	case 429:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeRateLimit,
			Message:    "rate limit exceeded",
			Underlying: errors.Join(provider.ErrRateLimit, err),
			Retryable:  true,
			RetryAfter: parseRetryAfter(apiErr),
		}
	case 400:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
			Underlying: err,
		}
	case 500, 502, 503, 504:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeUnavailable,
			Message:    "service unavailable",
			Underlying: err,
			Retryable:  true,
		}
	default:
		return &provider.ProviderError{
			Code:       provider.ErrorCodeNetwork,
			Message:    fmt.Sprintf("API error: %s", apiErr.Message),
			Underlying: err,
			Retryable:  true,
		}
	}
}

// parseRetryAfter reads the google.rpc.RetryInfo detail, if present.
func parseRetryAfter(apiErr genai.APIError) *time.Duration {
	for _, d := range apiErr.Details {
		if t, _ := d["@type"].(string); !strings.HasSuffix(t, "google.rpc.RetryInfo") {
			continue
		}
		delay, _ := d["retryDelay"].(string)
		if dur, err := time.ParseDuration(delay); err == nil {
			return &dur
		}
	}
	return nil
}
