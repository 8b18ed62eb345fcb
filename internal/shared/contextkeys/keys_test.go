package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "cosmosdump context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, ExportIDKey, "export-123")
	ctx = context.WithValue(ctx, DatabaseIDKey, "db-xyz")
	ctx = context.WithValue(ctx, CollectionIDKey, "col-abc")
	ctx = context.WithValue(ctx, OperationKey, "operation-read")

	assert.Equal(t, "export-123", ctx.Value(ExportIDKey))
	assert.Equal(t, "db-xyz", ctx.Value(DatabaseIDKey))
	assert.Equal(t, "col-abc", ctx.Value(CollectionIDKey))
	assert.Equal(t, "operation-read", ctx.Value(OperationKey))
}
