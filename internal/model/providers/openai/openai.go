package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/harunnryd/newsdesk/internal/model/contract"

	"github.com/sashabaranov/go-openai"
)

type Provider struct {
	client *openai.Client
}

func New(apiKey, baseURL string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	return &Provider{client: openai.NewClientWithConfig(cfg)}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Generate(ctx context.Context, req contract.Request) (*contract.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai request failed: no choices returned")
	}

	choice := resp.Choices[0]
	result := &contract.Response{Text: choice.Message.Content}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				slog.Warn("Discarding undecodable tool arguments", "provider", "openai", "tool", tc.Function.Name, "error", err)
				args = map[string]any{}
			}
		}
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", len(result.FunctionCalls)+1)
		}
		result.FunctionCalls = append(result.FunctionCalls, contract.ToolCall{ID: id, Name: tc.Function.Name, Args: args})
	}

	return result, nil
}

func buildRequest(req contract.Request) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	for _, turn := range req.Contents {
		switch turn.Role {
		case contract.RoleModel:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Text()}
			for _, part := range turn.Parts {
				if part.ToolCall == nil {
					continue
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   part.ToolCall.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      part.ToolCall.Name,
						Arguments: string(part.ToolCall.ArgsJSON()),
					},
				})
			}
			messages = append(messages, msg)
		case contract.RoleTool:
			for _, part := range turn.Parts {
				if part.ToolResult == nil {
					continue
				}
				payload, _ := json.Marshal(part.ToolResult.ResultPayload())
				messages = append(messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    string(payload),
					ToolCallID: part.ToolResult.CallID,
				})
			}
		default:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Text()})
		}
	}

	var tools []openai.Tool
	for _, t := range req.Tools {
		params := t.Parameters
		if params == nil {
			params = map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Tools:       tools,
		MaxTokens:   req.Config.MaxOutputTokens,
		Temperature: float32(req.Config.Temperature),
	}
	if len(tools) > 0 && req.ToolChoice == contract.ToolChoiceAuto {
		chatReq.ToolChoice = "auto"
	}
	return chatReq
}
