package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/dump/domain/repository"
	"cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
	"cosmosdump/internal/shared/paging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client is the subset of *dynamodb.Client the source calls
type Client interface {
	dynamodb.ListTablesAPIClient
	dynamodb.ScanAPIClient
}

// Source exposes the tables of one region as a single database
type Source struct {
	client   Client
	database string
	pageSize int32
	logger   logger.Logger
}

var _ repository.AccountSource = (*Source)(nil)

// NewSourceFromRegion loads the default AWS credential chain for region
func NewSourceFromRegion(ctx context.Context, region, database string, pageSize int, log logger.Logger) (*Source, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to load AWS configuration").
			WithCause(err).
			WithComponent("dynamodb")
	}

	log.WithComponent("dynamodb").Infof("Using DynamoDB in region %s", cfg.Region)
	return NewSource(dynamodb.NewFromConfig(cfg), database, pageSize, log), nil
}

// NewSource creates a Source over client
func NewSource(client Client, database string, pageSize int, log logger.Logger) *Source {
	return &Source{
		client:   client,
		database: database,
		pageSize: int32(pageSize),
		logger:   log.WithComponent("dynamodb"),
	}
}

// Kind implements repository.AccountSource
func (s *Source) Kind() string { return "dynamodb" }

// Close implements repository.AccountSource
func (s *Source) Close(context.Context) error { return nil }

// Databases implements repository.AccountSource
func (s *Source) Databases(ctx context.Context) paging.Pager[[]string] {
	return paging.Static([]string{s.database})
}

// Collections lists the tables of the region
func (s *Source) Collections(ctx context.Context, databaseID string) paging.Pager[[]string] {
	if databaseID != s.database {
		return paging.Failed[[]string](fmt.Errorf("unknown database %q", databaseID))
	}
	p := dynamodb.NewListTablesPaginator(s.client, &dynamodb.ListTablesInput{
		Limit: aws.Int32(min(s.pageSize, 100)),
	})
	return paging.Map[*dynamodb.ListTablesOutput](awsPager[*dynamodb.ListTablesOutput, dynamodb.Options]{p}, func(out *dynamodb.ListTablesOutput) ([]string, error) {
		return out.TableNames, nil
	})
}

// Documents scans one table
func (s *Source) Documents(ctx context.Context, databaseID, collectionID string) paging.Pager[[]model.Document] {
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(collectionID),
		Limit:     aws.Int32(s.pageSize),
	})
	return paging.Map[*dynamodb.ScanOutput](awsPager[*dynamodb.ScanOutput, dynamodb.Options]{p}, func(out *dynamodb.ScanOutput) ([]model.Document, error) {
		var items []map[string]interface{}
		err := attributevalue.UnmarshalListOfMapsWithOptions(out.Items, &items, func(o *attributevalue.DecoderOptions) {
			o.UseNumber = true
		})
		if err != nil {
			return nil, fmt.Errorf("failed to decode items of table %q: %w", collectionID, err)
		}

		docs := make([]model.Document, 0, len(items))
		for _, item := range items {
			docs = append(docs, model.Document(jsonNumbers(item).(map[string]interface{})))
		}
		s.logger.WithContext(ctx).Debugf("Scanned %d items", len(docs))
		return docs, nil
	})
}

// sdkPaginator matches the paginators generated by the AWS SDK
type sdkPaginator[T any, O any] interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*O)) (T, error)
}

// awsPager adapts an SDK paginator to paging.Pager
type awsPager[T any, O any] struct {
	p sdkPaginator[T, O]
}

func (a awsPager[T, O]) More() bool { return a.p.HasMorePages() }

func (a awsPager[T, O]) NextPage(ctx context.Context) (T, error) {
	return a.p.NextPage(ctx)
}

// jsonNumbers replaces attributevalue.Number with json.Number so numbers
// serialize as JSON numbers without losing precision.
func jsonNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case attributevalue.Number:
		return json.Number(t)
	case map[string]interface{}:
		for k, e := range t {
			t[k] = jsonNumbers(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = jsonNumbers(e)
		}
		return t
	case []attributevalue.Number:
		out := make([]interface{}, len(t))
		for i, n := range t {
			out[i] = json.Number(n)
		}
		return out
	default:
		return v
	}
}
