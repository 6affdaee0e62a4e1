package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/harunnryd/newsdesk/internal/model/contract"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type Provider struct {
	client anthropic.Client
}

func New(apiKey, baseURL string) *Provider {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Provider{client: anthropic.NewClient(opts...)}
}

func (p *Provider) Name() string {
	return "anthropic"
}

func (p *Provider) Generate(ctx context.Context, req contract.Request) (*contract.Response, error) {
	msg, err := p.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	resp := &contract.Response{}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Text += b.Text
		case anthropic.ToolUseBlock:
			resp.FunctionCalls = append(resp.FunctionCalls, toolCall(b))
		}
	}

	return resp, nil
}

// toolCall converts a tool_use block. Undecodable input becomes empty args
// so the tool rejects the call and the model sees that as a tool error.
func toolCall(b anthropic.ToolUseBlock) contract.ToolCall {
	args := map[string]any{}
	if len(b.Input) > 0 {
		if err := json.Unmarshal(b.Input, &args); err != nil {
			slog.Warn("Discarding undecodable tool input", "provider", "anthropic", "tool", b.Name, "error", err)
			args = map[string]any{}
		}
	}
	return contract.ToolCall{ID: b.ID, Name: b.Name, Args: args}
}

func buildParams(req contract.Request) anthropic.MessageNewParams {
	var messages []anthropic.MessageParam
	for _, turn := range req.Contents {
		var blocks []anthropic.ContentBlockParamUnion
		for _, part := range turn.Parts {
			switch {
			case part.ToolCall != nil:
				blocks = append(blocks, anthropic.NewToolUseBlock(part.ToolCall.ID, part.ToolCall.ArgsJSON(), part.ToolCall.Name))
			case part.ToolResult != nil:
				payload, _ := json.Marshal(part.ToolResult.ResultPayload())
				blocks = append(blocks, anthropic.NewToolResultBlock(part.ToolResult.CallID, string(payload), part.ToolResult.IsError))
			case part.Text != "":
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if turn.Role == contract.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}

	var tools []anthropic.ToolUnionParam
	for _, t := range req.Tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{Properties: map[string]interface{}{}},
		}
		if t.Parameters != nil {
			if props, ok := t.Parameters["properties"].(map[string]interface{}); ok {
				tool.InputSchema.Properties = props
			}
			if required, ok := t.Parameters["required"].([]string); ok {
				tool.InputSchema.Required = required
			}
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.Config.MaxOutputTokens),
		Messages:    messages,
		Tools:       tools,
		Temperature: anthropic.Float(req.Config.Temperature),
	}
	if len(tools) > 0 && req.ToolChoice == contract.ToolChoiceAuto {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return params
}
