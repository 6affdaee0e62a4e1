package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppend_DoesNotAliasReceiver(t *testing.T) {
	base := make(History, 0, 8)
	base = append(base, UserText("prompt"))

	a := base.Append(ModelToolCall(ToolCall{Name: "a"}))
	b := base.Append(ModelToolCall(ToolCall{Name: "b"}))

	require.Len(t, base, 1)
	require.Len(t, a, 2)
	require.Len(t, b, 2)
	assert.Equal(t, "a", a[1].Parts[0].ToolCall.Name)
	assert.Equal(t, "b", b[1].Parts[0].ToolCall.Name)
}

func TestGenerationConfigValidate(t *testing.T) {
	ok := GenerationConfig{Model: "m", MaxOutputTokens: 10, Temperature: 0.3}
	require.NoError(t, ok.Validate())

	assert.Error(t, GenerationConfig{MaxOutputTokens: 10}.Validate())
	assert.Error(t, GenerationConfig{Model: "m"}.Validate())
	assert.Error(t, GenerationConfig{Model: "m", MaxOutputTokens: 1, Temperature: -0.1}.Validate())
	assert.Error(t, GenerationConfig{Model: "m", MaxOutputTokens: 1, Temperature: 1.01}.Validate())
}

func TestToolResultPayload(t *testing.T) {
	ok := ToolResult{Name: "x", Content: json.RawMessage(`{"title":"T"}`)}
	assert.Equal(t, map[string]any{"title": "T"}, ok.ResultPayload())

	failed := ToolResult{Name: "x", IsError: true, Error: "fetch failed"}
	assert.Equal(t, map[string]any{"error": "fetch failed"}, failed.ResultPayload())

	scalar := ToolResult{Name: "x", Content: json.RawMessage(`"plain"`)}
	assert.Equal(t, map[string]any{"output": `"plain"`}, scalar.ResultPayload())
}

func TestTurnHelpers(t *testing.T) {
	turn := Turn{Role: RoleModel, Parts: []Part{{Text: "a"}, {Text: "b"}}}
	assert.Equal(t, "ab", turn.Text())

	call := ToolCall{Name: "f"}
	assert.JSONEq(t, `{}`, string(call.ArgsJSON()))
	call.Args = map[string]any{"url": "https://example.com"}
	assert.JSONEq(t, `{"url":"https://example.com"}`, string(call.ArgsJSON()))
}
