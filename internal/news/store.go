package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
)

const (
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
)

// Store is the read side the API and digest use.
type Store interface {
	List(ctx context.Context, q Query) ([]Article, error)
	Close() error
}

// Writer is implemented by backends that can be seeded from the CLI.
type Writer interface {
	Upsert(ctx context.Context, articles ...Article) error
}

func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendFirestore:
		return OpenFirestore(ctx, cfg)
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	default:
		return nil, newsErrors.InvalidInput(fmt.Sprintf("unknown store backend %q", cfg.Backend))
	}
}
