package contract

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// Part is one piece of a turn. Exactly one field is set.
type Part struct {
	Text       string      `json:"text,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is a tool outcome fed back to the model. A failed execution is
// still a result: IsError is set and Error carries the message.
type ToolResult struct {
	CallID  string          `json:"call_id,omitempty"`
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content,omitempty"`
	IsError bool            `json:"is_error,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type ToolDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type ToolChoice string

const (
	ToolChoiceNone ToolChoice = ""
	ToolChoiceAuto ToolChoice = "auto"
)

type GenerationConfig struct {
	Model           string  `json:"model"`
	MaxOutputTokens int     `json:"max_output_tokens"`
	Temperature     float64 `json:"temperature"`
	EnableToolUse   bool    `json:"enable_tool_use"`
}

func (c GenerationConfig) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("generation config: model is required")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("generation config: max output tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("generation config: temperature must be within [0,1], got %v", c.Temperature)
	}
	return nil
}

type Request struct {
	Model      string           `json:"model"`
	Config     GenerationConfig `json:"config"`
	Contents   History          `json:"contents"`
	Tools      []ToolDef        `json:"tools,omitempty"`
	ToolChoice ToolChoice       `json:"tool_choice,omitempty"`
}

type Response struct {
	Text          string     `json:"text,omitempty"`
	FunctionCalls []ToolCall `json:"function_calls,omitempty"`
}

// History is the ordered exchange log. Append never mutates the receiver.
type History []Turn

func (h History) Append(turns ...Turn) History {
	out := make(History, 0, len(h)+len(turns))
	out = append(out, h...)
	return append(out, turns...)
}

func UserText(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{{Text: text}}}
}

func ModelToolCall(call ToolCall) Turn {
	c := call
	return Turn{Role: RoleModel, Parts: []Part{{ToolCall: &c}}}
}

func ToolResultTurn(result ToolResult) Turn {
	r := result
	return Turn{Role: RoleTool, Parts: []Part{{ToolResult: &r}}}
}

// Text concatenates the text parts of a turn.
func (t Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// ResultPayload returns the JSON object sent back to the model for a tool
// result: the tool's content on success, {"error": msg} otherwise.
func (r ToolResult) ResultPayload() map[string]any {
	if r.IsError {
		return map[string]any{"error": r.Error}
	}
	var obj map[string]any
	if err := json.Unmarshal(r.Content, &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": string(r.Content)}
}

// ArgsJSON renders the call arguments, "{}" when there are none.
func (c ToolCall) ArgsJSON() json.RawMessage {
	if len(c.Args) == 0 {
		return json.RawMessage(`{}`)
	}
	b, err := json.Marshal(c.Args)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
