package model

import (
	"context"

	"github.com/harunnryd/newsdesk/internal/model/contract"
)

// Provider is a remote model endpoint. Generate performs exactly one round
// trip and returns text and/or the function calls the model asked for.
type Provider interface {
	Generate(ctx context.Context, req contract.Request) (*contract.Response, error)
	Name() string
}
