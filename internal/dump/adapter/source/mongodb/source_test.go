package mongodb

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/shared/logger"
	"cosmosdump/internal/shared/paging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newTestSource(mt *mtest.T, pageSize int) *Source {
	return NewSource(mt.Client, pageSize, logger.NewLoggerWithWriter("debug", "text", new(bytes.Buffer)))
}

func TestSource_Databases(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		src := newTestSource(mt, 10)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "databases", Value: bson.A{
				bson.D{{Key: "name", Value: "shop"}},
				bson.D{{Key: "name", Value: "audit"}},
			}},
		))

		pager := src.Databases(context.Background())
		require.True(mt, pager.More())
		page, err := pager.NextPage(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"shop", "audit"}, page)
		assert.False(mt, pager.More())
	})

	mt.Run("skips_system_databases", func(mt *mtest.T) {
		src := newTestSource(mt, 10)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "databases", Value: bson.A{
				bson.D{{Key: "name", Value: "admin"}},
				bson.D{{Key: "name", Value: "shop"}},
				bson.D{{Key: "name", Value: "config"}},
				bson.D{{Key: "name", Value: "local"}},
				bson.D{{Key: "name", Value: "audit"}},
			}},
		))

		page, err := src.Databases(context.Background()).NextPage(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"shop", "audit"}, page)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "listDatabases", started.CommandName)
		filter := started.Command.Lookup("filter").String()
		for _, name := range []string{"admin", "local", "config"} {
			assert.Contains(mt, filter, `"`+name+`"`)
		}
	})

	mt.Run("command_error", func(mt *mtest.T) {
		src := newTestSource(mt, 10)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		_, err := src.Databases(context.Background()).NextPage(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "unauthorized")
	})
}

func TestSource_Collections(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		src := newTestSource(mt, 10)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "shop.$cmd.listCollections", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "orders"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "customers"}, {Key: "type", Value: "collection"}},
		))

		page, err := src.Collections(context.Background(), "shop").NextPage(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"orders", "customers"}, page)
	})
}

func TestSource_Documents(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("one_page_per_batch", func(mt *mtest.T) {
		src := newTestSource(mt, 2)
		id := primitive.NewObjectID()
		first := mtest.CreateCursorResponse(1, "shop.orders", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}, {Key: "n", Value: int32(1)}},
			bson.D{{Key: "n", Value: int64(2)}},
		)
		second := mtest.CreateCursorResponse(0, "shop.orders", mtest.NextBatch,
			bson.D{{Key: "n", Value: int32(3)}, {Key: "tags", Value: bson.A{"a", "b"}}},
		)
		mt.AddMockResponses(first, second)

		pager := src.Documents(context.Background(), "shop", "orders")
		var pages [][]model.Document
		err := paging.Drain(context.Background(), pager, func(page []model.Document) error {
			pages = append(pages, page)
			return nil
		})
		require.NoError(mt, err)

		require.GreaterOrEqual(mt, len(pages), 2)
		assert.Equal(mt, []model.Document{
			{"_id": map[string]interface{}{"$oid": id.Hex()}, "n": json.Number("1")},
			{"n": json.Number("2")},
		}, pages[0])
		assert.Equal(mt, []model.Document{
			{"n": json.Number("3"), "tags": []interface{}{"a", "b"}},
		}, pages[1])
		for _, extra := range pages[2:] {
			assert.Empty(mt, extra)
		}
		assert.False(mt, pager.More())
	})

	mt.Run("find_error", func(mt *mtest.T) {
		src := newTestSource(mt, 10)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "find error"}))

		pager := src.Documents(context.Background(), "shop", "orders")
		_, err := pager.NextPage(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "find error")
		assert.False(mt, pager.More())
	})

	mt.Run("get_more_error", func(mt *mtest.T) {
		src := newTestSource(mt, 1)
		first := mtest.CreateCursorResponse(1, "shop.orders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}})
		mt.AddMockResponses(first, mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 43, Message: "cursor not found"}))

		pager := src.Documents(context.Background(), "shop", "orders")
		page, err := pager.NextPage(context.Background())
		require.NoError(mt, err)
		assert.Len(mt, page, 1)

		_, err = pager.NextPage(context.Background())
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "cursor not found")
	})
}

func TestDecodeDocument(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "name", Value: "x"},
		{Key: "big", Value: int64(9007199254740993)},
		{Key: "nested", Value: bson.D{{Key: "ok", Value: true}}},
	})
	require.NoError(t, err)

	doc, err := decodeDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, model.Document{
		"name":   "x",
		"big":    json.Number("9007199254740993"),
		"nested": map[string]interface{}{"ok": true},
	}, doc)
}
