package dump

import (
	"context"
	"fmt"

	"cosmosdump/internal/dump/adapter/output"
	"cosmosdump/internal/dump/adapter/source/cosmos"
	"cosmosdump/internal/dump/adapter/source/dynamodb"
	"cosmosdump/internal/dump/adapter/source/mongodb"
	"cosmosdump/internal/dump/config"
	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/dump/domain/repository"
	"cosmosdump/internal/dump/domain/service"
	"cosmosdump/internal/dump/usecase"
	"cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
)

// DumpModule wires a source, the traversal and a writer for one run
type DumpModule struct {
	config  *config.Config
	source  repository.AccountSource
	usecase *usecase.ExportUsecase
	writer  *output.Writer
	logger  logger.Logger
}

// NewDumpModule builds every component from cfg. cfg must already be
// validated.
func NewDumpModule(ctx context.Context, cfg *config.Config, log logger.Logger) (*DumpModule, error) {
	encoder, err := output.NewEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	sink, err := output.NewSink(ctx, cfg.Output, cfg.Region, encoder)
	if err != nil {
		return nil, err
	}

	source, err := NewSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return NewDumpModuleWith(cfg, source, output.NewWriter(encoder, sink, log), log), nil
}

// NewDumpModuleWith assembles a module from already built parts
func NewDumpModuleWith(cfg *config.Config, source repository.AccountSource, writer *output.Writer, log logger.Logger) *DumpModule {
	return &DumpModule{
		config:  cfg,
		source:  source,
		usecase: usecase.NewExportUsecase(source, log),
		writer:  writer,
		logger:  log.WithComponent("dump"),
	}
}

// NewSource connects to the account selected by cfg.Source
func NewSource(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.AccountSource, error) {
	switch cfg.Source {
	case config.SourceCosmos:
		creds, err := service.ResolveCredentials(service.CredentialInput{
			ConnectionString: cfg.ConnectionString,
			Account:          cfg.Account,
			Key:              cfg.Key,
		})
		if err != nil {
			return nil, err
		}
		return cosmos.NewSource(creds, cfg.PageSize, log, nil)
	case config.SourceMongoDB:
		return mongodb.Connect(ctx, cfg.MongoDBURI, cfg.PageSize, log)
	case config.SourceDynamoDB:
		return dynamodb.NewSourceFromRegion(ctx, cfg.Region, cfg.DynamoDBDatabase(), cfg.PageSize, log)
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unknown source %q", cfg.Source)).
			WithCause(errors.ErrInvalidSource).
			WithComponent("dump")
	}
}

// Run performs the export and writes the dump. A fatal error leaves the
// destination untouched.
func (m *DumpModule) Run(ctx context.Context) (*model.ExportReport, error) {
	log := m.logger.WithContext(ctx)
	log.WithFields(map[string]interface{}{
		"source":      m.source.Kind(),
		"format":      m.config.Format,
		"destination": m.config.Output,
		"page_size":   m.config.PageSize,
	}).Info("Starting export")

	dump, report, err := m.usecase.Export(ctx)
	if err != nil {
		log.WithError(err).Error("Export aborted, nothing written")
		return report, err
	}

	if err := m.writer.WriteDump(ctx, dump); err != nil {
		return report, err
	}

	m.logReport(ctx, report)
	return report, nil
}

func (m *DumpModule) logReport(ctx context.Context, report *model.ExportReport) {
	log := m.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"databases":   report.Totals.Databases,
		"collections": report.Totals.Collections,
		"documents":   report.Totals.Documents,
		"duration":    report.Duration().String(),
	})

	if !report.Degraded() {
		log.Info("Export complete")
		return
	}

	for _, skipped := range report.Skipped {
		fields := map[string]interface{}{"database": skipped.Database, "reason": skipped.Reason}
		if skipped.Collection != "" {
			fields["collection"] = skipped.Collection
		}
		m.logger.WithContext(ctx).WithFields(fields).Warn("Omitted from dump")
	}
	log.Warnf("Export complete with %d omitted subtrees", len(report.Skipped))
}

// Stop releases the source connection
func (m *DumpModule) Stop(ctx context.Context) error {
	if m.source == nil {
		return nil
	}
	return m.source.Close(ctx)
}
