package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/harunnryd/newsdesk/internal/model/contract"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParams_MapsTurnsAndTools(t *testing.T) {
	history := contract.History{}.Append(
		contract.UserText("summarize"),
		contract.ModelToolCall(contract.ToolCall{ID: "toolu_1", Name: "fetchAndConvertToMarkdown", Args: map[string]any{"url": "https://example.com"}}),
		contract.ToolResultTurn(contract.ToolResult{CallID: "toolu_1", Name: "fetchAndConvertToMarkdown", Content: json.RawMessage(`{"title":"T"}`)}),
	)

	params := buildParams(contract.Request{
		Model:    "claude-3-5-haiku-latest",
		Config:   contract.GenerationConfig{Model: "claude-3-5-haiku-latest", MaxOutputTokens: 300, Temperature: 0.3},
		Contents: history,
		Tools: []contract.ToolDef{{
			Name:        "fetchAndConvertToMarkdown",
			Description: "fetch",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"url": map[string]interface{}{"type": "string"}},
				"required":   []string{"url"},
			},
		}},
		ToolChoice: contract.ToolChoiceAuto,
	})

	require.Len(t, params.Messages, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, params.Messages[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, params.Messages[2].Role)
	assert.Equal(t, int64(300), params.MaxTokens)
	require.Len(t, params.Tools, 1)
	require.NotNil(t, params.Tools[0].OfTool)
	assert.Equal(t, []string{"url"}, params.Tools[0].OfTool.InputSchema.Required)
	require.NotNil(t, params.ToolChoice.OfAuto)
}

func TestBuildParams_SkipsEmptyTurns(t *testing.T) {
	params := buildParams(contract.Request{
		Model:    "claude",
		Config:   contract.GenerationConfig{MaxOutputTokens: 10},
		Contents: contract.History{{Role: contract.RoleUser, Parts: []contract.Part{{Text: ""}}}, contract.UserText("hi")},
	})
	require.Len(t, params.Messages, 1)
	assert.Nil(t, params.ToolChoice.OfAuto)
}

func TestToolCall_DecodesInput(t *testing.T) {
	call := toolCall(anthropic.ToolUseBlock{
		ID:    "toolu_1",
		Name:  "fetchAndConvertToMarkdown",
		Input: json.RawMessage(`{"url":"https://example.com/a"}`),
	})
	assert.Equal(t, "toolu_1", call.ID)
	assert.Equal(t, "fetchAndConvertToMarkdown", call.Name)
	assert.Equal(t, map[string]any{"url": "https://example.com/a"}, call.Args)
}

func TestToolCall_UndecodableInputYieldsEmptyArgs(t *testing.T) {
	for _, input := range []string{`{"url":`, `"just a string"`, `[1,2]`} {
		call := toolCall(anthropic.ToolUseBlock{ID: "toolu_2", Name: "fetchAndConvertToMarkdown", Input: json.RawMessage(input)})
		require.NotNil(t, call.Args, input)
		assert.Empty(t, call.Args, input)
		assert.Equal(t, "fetchAndConvertToMarkdown", call.Name)
	}
}
