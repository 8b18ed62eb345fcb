package cosmos

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

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

const selectAll = "SELECT * FROM c"

// api is the part of the Cosmos SDK the source needs
type api interface {
	queryDatabases() *runtime.Pager[azcosmos.QueryDatabasesResponse]
	queryContainers(databaseID string) (*runtime.Pager[azcosmos.QueryContainersResponse], error)
	queryItems(databaseID, containerID string, pageSize int32) (*runtime.Pager[azcosmos.QueryItemsResponse], error)
}

// Source reads a Cosmos DB NoSQL account
type Source struct {
	api      api
	pageSize int32
	logger   logger.Logger
}

var _ repository.AccountSource = (*Source)(nil)

// Options tunes the underlying SDK client
type Options struct {
	// Transport replaces the HTTP pipeline transport, mainly for tests
	Transport policy.Transporter
}

// NewSource creates a Source authenticated with the account's master key
func NewSource(creds model.Credentials, pageSize int, log logger.Logger, opts *Options) (*Source, error) {
	cred, err := azcosmos.NewKeyCredential(creds.Key)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid account key").
			WithCause(err).
			WithComponent("cosmos")
	}

	clientOpts := &azcosmos.ClientOptions{}
	if opts != nil && opts.Transport != nil {
		clientOpts.Transport = opts.Transport
	}

	client, err := azcosmos.NewClientWithKey(creds.Endpoint(), cred, clientOpts)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to create client for account %q", creds.Account)).
			WithCause(err).
			WithComponent("cosmos")
	}

	log.WithComponent("cosmos").Infof("Connected to Cosmos account %s", creds.Account)
	return newSource(&sdkAPI{client: client}, pageSize, log), nil
}

func newSource(a api, pageSize int, log logger.Logger) *Source {
	return &Source{
		api:      a,
		pageSize: int32(pageSize),
		logger:   log.WithComponent("cosmos"),
	}
}

// Kind implements repository.AccountSource
func (s *Source) Kind() string { return "cosmos" }

// Close implements repository.AccountSource. The SDK client holds no
// resources that need releasing.
func (s *Source) Close(context.Context) error { return nil }

// Databases implements repository.AccountSource
func (s *Source) Databases(ctx context.Context) paging.Pager[[]string] {
	return paging.Map[azcosmos.QueryDatabasesResponse](s.api.queryDatabases(), func(resp azcosmos.QueryDatabasesResponse) ([]string, error) {
		ids := make([]string, 0, len(resp.Databases))
		for _, db := range resp.Databases {
			ids = append(ids, db.ID)
		}
		return ids, nil
	})
}

// Collections implements repository.AccountSource
func (s *Source) Collections(ctx context.Context, databaseID string) paging.Pager[[]string] {
	pager, err := s.api.queryContainers(databaseID)
	if err != nil {
		return paging.Failed[[]string](err)
	}
	return paging.Map[azcosmos.QueryContainersResponse](pager, func(resp azcosmos.QueryContainersResponse) ([]string, error) {
		ids := make([]string, 0, len(resp.Containers))
		for _, c := range resp.Containers {
			ids = append(ids, c.ID)
		}
		return ids, nil
	})
}

// Documents implements repository.AccountSource
func (s *Source) Documents(ctx context.Context, databaseID, collectionID string) paging.Pager[[]model.Document] {
	pager, err := s.api.queryItems(databaseID, collectionID, s.pageSize)
	if err != nil {
		return paging.Failed[[]model.Document](err)
	}
	return paging.Map[azcosmos.QueryItemsResponse](pager, func(resp azcosmos.QueryItemsResponse) ([]model.Document, error) {
		s.logger.WithContext(ctx).Debugf("Fetched %d items (%.2f RU)", len(resp.Items), resp.RequestCharge)
		return decodeItems(resp.Items)
	})
}

// decodeItems keeps numbers as json.Number so integers wider than 53 bits
// survive the round trip unchanged.
func decodeItems(items [][]byte) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(items))
	for i, raw := range items {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var doc model.Document
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("item %d is not a JSON object: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// sdkAPI adapts *azcosmos.Client to api
type sdkAPI struct {
	client *azcosmos.Client
}

func (a *sdkAPI) queryDatabases() *runtime.Pager[azcosmos.QueryDatabasesResponse] {
	return a.client.NewQueryDatabasesPager(selectAll, nil)
}

func (a *sdkAPI) queryContainers(databaseID string) (*runtime.Pager[azcosmos.QueryContainersResponse], error) {
	db, err := a.client.NewDatabase(databaseID)
	if err != nil {
		return nil, err
	}
	return db.NewQueryContainersPager(selectAll, nil), nil
}

func (a *sdkAPI) queryItems(databaseID, containerID string, pageSize int32) (*runtime.Pager[azcosmos.QueryItemsResponse], error) {
	container, err := a.client.NewContainer(databaseID, containerID)
	if err != nil {
		return nil, err
	}
	return container.NewQueryItemsPager(selectAll, azcosmos.NewPartitionKey(), &azcosmos.QueryOptions{
		PageSizeHint: pageSize,
	}), nil
}
