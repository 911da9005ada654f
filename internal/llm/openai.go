package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/scrumhand/scrumhand/pkg/domain"
)

// OpenAIClient implements ports.ModelClient for the OpenAI Chat Completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAIClient. It requires the OPENAI_API_KEY
// environment variable to be set, and honours OPENAI_BASE_URL for custom
// API endpoints.
func NewOpenAIClient(ctx context.Context, modelName string) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	c := openai.NewClient(options...)
	return &OpenAIClient{client: &c, model: modelName}, nil
}

// Complete sends the conversation to the OpenAI API and returns the draft
// assistant message, including any requested tool calls.
func (o *OpenAIClient) Complete(ctx context.Context, system string, msgs []domain.Message, tools []domain.Tool) (*domain.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: toOpenAIMessages(system, msgs),
		Tools:    toOpenAITools(tools),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", err)
	}

	return fromOpenAIResponse(resp)
}

func toOpenAIMessages(system string, msgs []domain.Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion

	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, msg := range msgs {
		switch msg.Role {
		case domain.RoleAssistant:
			assistant := openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				argsBytes, err := json.Marshal(tc.Args)
				if err != nil {
					continue
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnion{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageFunctionToolCallFunction{
						Name:      tc.Name,
						Arguments: string(argsBytes),
					},
				})
			}
			out = append(out, assistant.ToParam())

		case domain.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))

		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}

	return out
}

func toOpenAITools(tools []domain.Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	var out []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		params := openai.FunctionParameters{
			"type":       "object",
			"properties": map[string]any{},
		}
		if props, ok := t.Parameters["properties"].(map[string]any); ok {
			params["properties"] = props
		}
		if required, ok := t.Parameters["required"]; ok {
			params["required"] = required
		}

		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  params,
		}))
	}
	return out
}

func fromOpenAIResponse(resp *openai.ChatCompletion) (*domain.Message, error) {
	if len(resp.Choices) == 0 {
		return &domain.Message{Role: domain.RoleAssistant}, nil
	}

	choice := resp.Choices[0].Message
	draft := &domain.Message{Role: domain.RoleAssistant, Content: choice.Content}

	for _, tc := range choice.ToolCalls {
		var args map[string]any
		// Arguments arrive as a JSON string, expected to be a flat map.
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to unmarshal function call arguments: %w", err)
		}
		draft.ToolCalls = append(draft.ToolCalls, domain.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}

	return draft, nil
}
