package mongodb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/dump/domain/repository"
	"cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
	"cosmosdump/internal/shared/paging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Source reads a MongoDB deployment, including Cosmos DB accounts exposed
// through the MongoDB API
type Source struct {
	client   *mongo.Client
	pageSize int32
	logger   logger.Logger
}

var _ repository.AccountSource = (*Source)(nil)

// Connect dials uri and verifies the deployment is reachable
func Connect(ctx context.Context, uri string, pageSize int, log logger.Logger) (*Source, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewConfigurationError("failed to connect to MongoDB").
			WithCause(err).
			WithComponent("mongodb")
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewEnumerationError("failed to ping MongoDB").
			WithCause(err).
			WithComponent("mongodb")
	}

	log.WithComponent("mongodb").Info("Connected to MongoDB")
	return NewSource(client, pageSize, log), nil
}

// NewSource wraps an already connected client
func NewSource(client *mongo.Client, pageSize int, log logger.Logger) *Source {
	return &Source{
		client:   client,
		pageSize: int32(pageSize),
		logger:   log.WithComponent("mongodb"),
	}
}

// Kind implements repository.AccountSource
func (s *Source) Kind() string { return "mongodb" }

// Close disconnects the client
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// systemDatabases hold server state (users, oplog, sharding metadata) rather
// than application data and are never exported
var systemDatabases = []string{"admin", "local", "config"}

func isSystemDatabase(name string) bool {
	for _, sys := range systemDatabases {
		if name == sys {
			return true
		}
	}
	return false
}

// Databases implements repository.AccountSource. The server answers in one
// batch, so the listing is a single page. System databases are excluded
// server-side and again here for servers that ignore the filter.
func (s *Source) Databases(ctx context.Context) paging.Pager[[]string] {
	return paging.Single(func(ctx context.Context) ([]string, error) {
		filter := bson.D{{Key: "name", Value: bson.D{{Key: "$nin", Value: systemDatabases}}}}
		names, err := s.client.ListDatabaseNames(ctx, filter)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(names))
		for _, name := range names {
			if isSystemDatabase(name) {
				s.logger.WithContext(ctx).Debugf("Skipping system database %s", name)
				continue
			}
			ids = append(ids, name)
		}
		return ids, nil
	})
}

// Collections implements repository.AccountSource
func (s *Source) Collections(ctx context.Context, databaseID string) paging.Pager[[]string] {
	return paging.Single(func(ctx context.Context) ([]string, error) {
		return s.client.Database(databaseID).ListCollectionNames(ctx, bson.D{})
	})
}

// Documents implements repository.AccountSource. Each server batch becomes
// one page.
func (s *Source) Documents(ctx context.Context, databaseID, collectionID string) paging.Pager[[]model.Document] {
	coll := s.client.Database(databaseID).Collection(collectionID)
	return &cursorPager{
		open: func(ctx context.Context) (*mongo.Cursor, error) {
			return coll.Find(ctx, bson.D{}, options.Find().SetBatchSize(s.pageSize))
		},
	}
}

// cursorPager splits a cursor into pages along server batch boundaries
type cursorPager struct {
	open   func(ctx context.Context) (*mongo.Cursor, error)
	cursor *mongo.Cursor
	done   bool
}

func (p *cursorPager) More() bool { return !p.done }

func (p *cursorPager) NextPage(ctx context.Context) ([]model.Document, error) {
	if p.done {
		return nil, paging.ErrNoMorePages
	}

	if p.cursor == nil {
		cursor, err := p.open(ctx)
		if err != nil {
			p.done = true
			return nil, err
		}
		p.cursor = cursor
	}

	docs := []model.Document{}
	for {
		if !p.cursor.Next(ctx) {
			p.done = true
			err := p.cursor.Err()
			_ = p.cursor.Close(ctx)
			if err != nil {
				return nil, err
			}
			return docs, nil
		}

		doc, err := decodeDocument(p.cursor.Current)
		if err != nil {
			p.done = true
			_ = p.cursor.Close(ctx)
			return nil, err
		}
		docs = append(docs, doc)

		if p.cursor.RemainingBatchLength() == 0 {
			return docs, nil
		}
	}
}

// decodeDocument renders raw as relaxed Extended JSON so BSON-only types
// such as ObjectId and dates keep their $-prefixed type wrappers.
func decodeDocument(raw bson.Raw) (model.Document, error) {
	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to render document as extended JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(ext))
	dec.UseNumber()
	var doc model.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
