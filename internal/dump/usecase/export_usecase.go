package usecase

import (
	"context"
	"fmt"
	"time"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/dump/domain/repository"
	"cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
	"cosmosdump/internal/shared/paging"
	"cosmosdump/internal/shared/utils"
)

// ExportUsecase walks an account one level at a time and assembles the dump.
// It is strictly sequential: one page fetch at a time, databases and
// collections in the order the source yields them.
type ExportUsecase struct {
	source repository.AccountSource
	logger logger.Logger
	now    func() time.Time
}

// NewExportUsecase creates an ExportUsecase reading from source
func NewExportUsecase(source repository.AccountSource, log logger.Logger) *ExportUsecase {
	return &ExportUsecase{
		source: source,
		logger: log.WithComponent("traversal"),
		now:    time.Now,
	}
}

// Export lists every database and dumps each one. Only a failed database
// listing (or a cancelled context) aborts the run; failures below that drop
// the affected subtree and are recorded in the report.
func (uc *ExportUsecase) Export(ctx context.Context) (*model.DumpFile, *model.ExportReport, error) {
	exportID, _ := utils.GetExportIDFromContext(ctx)
	report := model.NewExportReport(exportID, uc.now())

	databaseIDs, err := uc.ListDatabases(ctx)
	if err != nil {
		return nil, report, err
	}

	dump := model.NewDumpFile()
	for _, id := range databaseIDs {
		database, err := uc.DumpDatabase(ctx, id, report)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, report, errors.NewEnumerationError("export cancelled").WithCause(ctxErr)
			}
			continue
		}
		dump.Databases = append(dump.Databases, *database)
	}

	report.Finish(dump, uc.now())
	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"databases":   report.Totals.Databases,
		"collections": report.Totals.Collections,
		"documents":   report.Totals.Documents,
		"skipped":     len(report.Skipped),
	}).Info("Traversal finished")
	return dump, report, nil
}

// ListDatabases returns every database identifier of the account. Any page
// error is fatal and the partial list is discarded.
func (uc *ExportUsecase) ListDatabases(ctx context.Context) ([]string, error) {
	log := uc.logger.WithContext(ctx)
	log.Debugf("Listing databases from %s", uc.source.Kind())

	ids := []string{}
	err := paging.Drain(ctx, uc.source.Databases(ctx), func(page []string) error {
		ids = append(ids, page...)
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to list databases")
		return nil, errors.NewEnumerationError("failed to list databases").
			WithCause(err).
			WithComponent("traversal")
	}

	log.Infof("Found %d databases", len(ids))
	return ids, nil
}

// DumpDatabase lists the collections of one database and dumps each of them.
// A failed collection page abandons the whole database; a failed collection
// only drops that collection. Both are recorded in report.
func (uc *ExportUsecase) DumpDatabase(ctx context.Context, databaseID string, report *model.ExportReport) (*model.Database, error) {
	ctx = utils.WithDatabaseID(ctx, databaseID)
	log := uc.logger.WithContext(ctx)
	log.Info("Dumping database")

	database := model.NewDatabase(databaseID)
	err := paging.Drain(ctx, uc.source.Collections(ctx, databaseID), func(page []string) error {
		for _, collectionID := range page {
			collection, err := uc.DumpCollection(ctx, databaseID, collectionID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				report.SkipCollection(databaseID, collectionID, err)
				continue
			}
			database.Collections = append(database.Collections, *collection)
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Skipping database: failed to list collections")
		report.SkipDatabase(databaseID, err)
		return nil, errors.NewPartialEnumerationError(fmt.Sprintf("failed to list collections of database %q", databaseID)).
			WithCause(err).
			WithComponent("traversal").
			WithDetail("database", databaseID)
	}

	log.WithFields(map[string]interface{}{
		"collections": len(database.Collections),
		"documents":   database.DocumentCount(),
	}).Info("Database dumped")
	return database, nil
}

// DumpCollection reads every document of one collection. Any page error
// abandons the collection.
func (uc *ExportUsecase) DumpCollection(ctx context.Context, databaseID, collectionID string) (*model.Collection, error) {
	ctx = utils.WithCollectionID(ctx, collectionID)
	log := uc.logger.WithContext(ctx)

	collection := model.NewCollection(collectionID)
	pages := 0
	err := paging.Drain(ctx, uc.source.Documents(ctx, databaseID, collectionID), func(page []model.Document) error {
		pages++
		collection.Documents = append(collection.Documents, page...)
		return nil
	})
	if err != nil {
		log.WithError(err).Warn("Skipping collection: failed to fetch documents")
		return nil, errors.NewPartialEnumerationError(fmt.Sprintf("failed to list documents of collection %q in database %q", collectionID, databaseID)).
			WithCause(err).
			WithComponent("traversal").
			WithDetail("database", databaseID).
			WithDetail("collection", collectionID)
	}

	log.Debugf("Collection dumped: %d documents in %d pages", len(collection.Documents), pages)
	return collection, nil
}
