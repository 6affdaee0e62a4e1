package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/harunnryd/newsdesk/internal/model/contract"

	"google.golang.org/genai"
)

type Options struct {
	APIKey   string
	Vertex   bool
	Project  string
	Location string
	BaseURL  string
}

type Provider struct {
	client *genai.Client
}

func New(ctx context.Context, opts Options) (*Provider, error) {
	cc := &genai.ClientConfig{}
	if opts.Vertex {
		cc.Backend = genai.BackendVertexAI
		cc.Project = opts.Project
		cc.Location = opts.Location
	} else {
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = apiKey
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.Request) (*contract.Response, error) {
	resp, err := p.client.Models.GenerateContent(ctx, req.Model, toContents(req.Contents), buildConfig(req))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return fromResponse(resp), nil
}

func buildConfig(req contract.Request) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		ResponseMIMEType: "text/plain",
		MaxOutputTokens:  int32(req.Config.MaxOutputTokens),
		Temperature:      genai.Ptr(float32(req.Config.Temperature)),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr[int32](0),
		},
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toSchema(t.Parameters),
			})
		}
		gc.Tools = []*genai.Tool{{FunctionDeclarations: decls}}

		if req.ToolChoice == contract.ToolChoiceAuto {
			gc.ToolConfig = &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
			}
		}
	}

	return gc
}

// toSchema converts a JSON-schema map to genai.Schema via its JSON form.
func toSchema(params map[string]interface{}) *genai.Schema {
	if params == nil {
		return nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	var schema genai.Schema
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil
	}
	return &schema
}

func toContents(history contract.History) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == contract.RoleModel {
			role = genai.RoleModel
		}

		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			switch {
			case part.ToolCall != nil:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   part.ToolCall.ID,
					Name: part.ToolCall.Name,
					Args: part.ToolCall.Args,
				}})
			case part.ToolResult != nil:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       part.ToolResult.CallID,
					Name:     part.ToolResult.Name,
					Response: part.ToolResult.ResultPayload(),
				}})
			default:
				parts = append(parts, &genai.Part{Text: part.Text})
			}
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func fromResponse(resp *genai.GenerateContentResponse) *contract.Response {
	out := &contract.Response{}
	if resp == nil {
		return out
	}

	for _, fc := range resp.FunctionCalls() {
		if fc == nil {
			continue
		}
		out.FunctionCalls = append(out.FunctionCalls, contract.ToolCall{ID: fc.ID, Name: fc.Name, Args: fc.Args})
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				out.Text += part.Text
			}
		}
	}

	return out
}
