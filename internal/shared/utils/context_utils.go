package utils

import (
	"context"
	"errors"

	"cosmosdump/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrExportIDNotFound  = errors.New("exportID not found in context")
	ErrExportIDNotString = errors.New("exportID in context is not a string")
)

// GetExportIDFromContext retrieves the export run ID from the context.
func GetExportIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.ExportIDKey)
	if val == nil {
		return "", ErrExportIDNotFound
	}
	exportID, ok := val.(string)
	if !ok {
		return "", ErrExportIDNotString
	}
	return exportID, nil
}

// WithExportID returns a copy of ctx carrying the export run ID
func WithExportID(ctx context.Context, exportID string) context.Context {
	return context.WithValue(ctx, contextkeys.ExportIDKey, exportID)
}

// WithDatabaseID returns a copy of ctx carrying the database ID
func WithDatabaseID(ctx context.Context, databaseID string) context.Context {
	return context.WithValue(ctx, contextkeys.DatabaseIDKey, databaseID)
}

// WithCollectionID returns a copy of ctx carrying the collection ID
func WithCollectionID(ctx context.Context, collectionID string) context.Context {
	return context.WithValue(ctx, contextkeys.CollectionIDKey, collectionID)
}

// WithOperation returns a copy of ctx tagged with an operation name for logs
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}
