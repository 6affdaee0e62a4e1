package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/harunnryd/newsdesk/internal/config"
	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
)

// FirestoreStore reads the `news` collection written by the crawler.
// Documents carry title, url, date and domain fields.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func OpenFirestore(ctx context.Context, cfg config.StoreConfig) (*FirestoreStore, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, newsErrors.InvalidInput("firestore store requires store.project_id or GOOGLE_CLOUD_PROJECT_ID")
	}
	databaseID := strings.TrimSpace(cfg.DatabaseID)
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = config.DefaultStoreCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	slog.Debug("Firestore store opened", "project", projectID, "database", databaseID, "collection", collection)
	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) List(ctx context.Context, q Query) ([]Article, error) {
	coll := s.client.Collection(s.collection)

	var query firestore.Query
	switch q.Mode() {
	case ModeSearch:
		// Firestore has no substring search, so the whole collection is
		// filtered in process.
		query = coll.Query
	case ModeDomain:
		query = coll.Where("domain", "==", strings.TrimSpace(q.Domain)).OrderBy("date", firestore.Desc)
	case ModeDateRange:
		query = coll.Where("date", ">=", *q.Start).Where("date", "<=", *q.End).OrderBy("date", firestore.Desc)
	default:
		query = coll.OrderBy("date", firestore.Desc)
	}
	if q.Mode() != ModeSearch && q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var articles []Article
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, newsErrors.WrapWithCategory(err, "list firestore articles", newsErrors.ErrTransient)
		}

		article := articleFromDocument(doc.Ref.ID, doc.Data())
		if q.Matches(article) {
			articles = append(articles, article)
		}
	}

	SortByDateDesc(articles)
	return applyLimit(articles, q.Limit), nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, articles ...Article) error {
	coll := s.client.Collection(s.collection)
	for _, a := range articles {
		doc := coll.NewDoc()
		if a.ID != "" {
			doc = coll.Doc(a.ID)
		}
		_, err := doc.Set(ctx, map[string]interface{}{
			"title":  a.Title,
			"url":    a.URL,
			"date":   a.Date,
			"domain": a.Domain,
		})
		if err != nil {
			return fmt.Errorf("upsert article %s: %w", doc.ID, err)
		}
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func articleFromDocument(id string, data map[string]interface{}) Article {
	str := func(key string) string {
		v, _ := data[key].(string)
		return v
	}
	return Article{
		ID:     id,
		Title:  str("title"),
		URL:    str("url"),
		Date:   ParseDate(data["date"]),
		Domain: str("domain"),
	}
}
