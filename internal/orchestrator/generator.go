// Package orchestrator drives a bounded exchange with the remote model: one
// prompt, at most one tool invocation, at most two remote calls.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
	"github.com/harunnryd/newsdesk/internal/logger"
	"github.com/harunnryd/newsdesk/internal/model"
	"github.com/harunnryd/newsdesk/internal/model/contract"
)

// ToolRunner is what the generator needs from *tool.Runner.
type ToolRunner interface {
	Declarations() []contract.ToolDef
	Execute(ctx context.Context, name string, input json.RawMessage) (contract.ToolResult, error)
}

// Stats describes how a single generation went.
type Stats struct {
	TraceID     string
	RemoteCalls int
	ToolName    string
	ToolError   string
	Duration    time.Duration
}

type Generator struct {
	model  model.Provider
	runner ToolRunner
}

// New wires a generator around an already constructed provider. runner may be
// nil, in which case tool use is never offered to the model.
func New(provider model.Provider, runner ToolRunner) *Generator {
	return &Generator{
		model:  provider,
		runner: runner,
	}
}

// Generate returns the model's final text. An empty string with a nil error
// means the model produced no text.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg contract.GenerationConfig) (string, error) {
	text, _, err := g.GenerateWithStats(ctx, prompt, cfg)
	return text, err
}

func (g *Generator) GenerateWithStats(ctx context.Context, prompt string, cfg contract.GenerationConfig) (text string, stats Stats, err error) {
	ctx, traceID := logger.EnsureTraceID(ctx)
	stats.TraceID = traceID
	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	if g == nil || g.model == nil {
		return "", stats, newsErrors.Internal("generator has no model provider")
	}
	if err := cfg.Validate(); err != nil {
		return "", stats, newsErrors.WrapWithCategory(err, "generate", newsErrors.ErrInvalidInput)
	}

	history := contract.History{contract.UserText(prompt)}
	req := contract.Request{
		Model:    cfg.Model,
		Config:   cfg,
		Contents: history,
	}
	if cfg.EnableToolUse && g.runner != nil {
		if decls := g.runner.Declarations(); len(decls) > 0 {
			req.Tools = decls
			req.ToolChoice = contract.ToolChoiceAuto
		}
	}

	first, err := g.call(ctx, req, &stats)
	if err != nil {
		return "", stats, err
	}
	if len(first.FunctionCalls) == 0 {
		return first.Text, stats, nil
	}

	if len(first.FunctionCalls) > 1 {
		slog.Debug("Ignoring extra tool calls", "requested", len(first.FunctionCalls), "trace_id", traceID)
	}
	call := first.FunctionCalls[0]
	call.Name = strings.TrimSpace(call.Name)
	if call.Name == "" {
		slog.Warn("Model requested a tool without a name", "trace_id", traceID)
		return first.Text, stats, nil
	}
	stats.ToolName = call.Name

	if g.runner == nil {
		slog.Warn("Model requested a tool but none are registered", "tool", call.Name, "trace_id", traceID)
		stats.ToolError = newsErrors.UnknownTool(call.Name).Error()
		return first.Text, stats, nil
	}

	result, err := g.runner.Execute(ctx, call.Name, call.ArgsJSON())
	if err != nil {
		if errors.Is(err, newsErrors.ErrUnknownTool) {
			slog.Warn("Model requested an unknown tool", "tool", call.Name, "trace_id", traceID)
			stats.ToolError = err.Error()
			return first.Text, stats, nil
		}
		return "", stats, fmt.Errorf("execute tool %s: %w", call.Name, err)
	}
	result.CallID = call.ID
	result.Name = call.Name
	if result.IsError {
		stats.ToolError = result.Error
	}

	req.Contents = history.Append(contract.ModelToolCall(call), contract.ToolResultTurn(result))

	second, err := g.call(ctx, req, &stats)
	if err != nil {
		return "", stats, err
	}
	if len(second.FunctionCalls) > 0 {
		slog.Debug("Ignoring tool calls in final response", "requested", len(second.FunctionCalls), "trace_id", traceID)
	}
	return second.Text, stats, nil
}

func (g *Generator) call(ctx context.Context, req contract.Request, stats *Stats) (*contract.Response, error) {
	stats.RemoteCalls++
	start := time.Now()
	traceID := logger.GetTraceID(ctx)

	resp, err := g.model.Generate(ctx, req)
	if err != nil {
		slog.Error("Remote model call failed",
			"provider", g.model.Name(),
			"model", req.Model,
			"call", stats.RemoteCalls,
			"error", err,
			"duration", time.Since(start),
			"trace_id", traceID,
		)
		return nil, newsErrors.WrapWithCategory(err, fmt.Sprintf("%s generate", g.model.Name()), newsErrors.ErrRemoteCall)
	}
	if resp == nil {
		resp = &contract.Response{}
	}

	slog.Debug("Remote model call complete",
		"provider", g.model.Name(),
		"model", req.Model,
		"call", stats.RemoteCalls,
		"turns", len(req.Contents),
		"function_calls", len(resp.FunctionCalls),
		"duration", time.Since(start),
		"trace_id", traceID,
	)
	return resp, nil
}
