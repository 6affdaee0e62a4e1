package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/logger"
	"github.com/harunnryd/newsdesk/internal/model/contract"
)

type Runner struct {
	registry *Registry
}

func NewRunner(registry *Registry) *Runner {
	return &Runner{registry: registry}
}

func (r *Runner) Declarations() []contract.ToolDef {
	if r == nil {
		return nil
	}
	return r.registry.Declarations()
}

func (r *Runner) Descriptors() []ToolDescriptor {
	if r == nil {
		return nil
	}
	return r.registry.Descriptors()
}

// Execute runs one tool call. Only an unknown tool name is returned as an
// error; invalid input, tool failures and panics come back as a ToolResult
// with IsError set so the model can see what went wrong.
func (r *Runner) Execute(ctx context.Context, name string, input json.RawMessage) (contract.ToolResult, error) {
	resolved := NormalizeToolName(name)
	result := contract.ToolResult{Name: resolved}

	var t Tool
	var ok bool
	if r != nil {
		t, ok = r.registry.Lookup(resolved)
	}
	if !ok {
		return result, newsErrors.UnknownTool(resolved)
	}

	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	traceID := logger.GetTraceID(ctx)

	if err := ValidateInput(t.Parameters(), input); err != nil {
		slog.Warn("Tool input validation failed", "tool", resolved, "error", err, "trace_id", traceID)
		result.IsError = true
		result.Error = fmt.Sprintf("invalid input: %v", err)
		return result, nil
	}

	start := time.Now()
	slog.Info("Executing tool", "tool", resolved, "trace_id", traceID)

	output, err := safeExecute(ctx, t, input)

	duration := time.Since(start)
	if err != nil {
		slog.Error("Tool execution failed", "tool", resolved, "error", err, "duration", duration, "trace_id", traceID)
		result.IsError = true
		result.Error = err.Error()
		return result, nil
	}

	slog.Info("Tool execution success", "tool", resolved, "duration", duration, "trace_id", traceID)
	result.Content = output
	return result, nil
}

func safeExecute(ctx context.Context, t Tool, input json.RawMessage) (output json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool %s panicked: %v", t.Name(), rec)
		}
	}()
	return t.Execute(ctx, input)
}
