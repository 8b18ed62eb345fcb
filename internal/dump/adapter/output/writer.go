package output

import (
	"context"

	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/shared/errors"
	"cosmosdump/internal/shared/logger"
)

// Writer serializes a complete dump and persists it. Nothing reaches the
// sink unless encoding succeeded.
type Writer struct {
	encoder Encoder
	sink    Sink
	logger  logger.Logger
}

// NewWriter creates a Writer
func NewWriter(encoder Encoder, sink Sink, log logger.Logger) *Writer {
	return &Writer{
		encoder: encoder,
		sink:    sink,
		logger:  log.WithComponent("writer"),
	}
}

// WriteDump encodes dump and hands the bytes to the sink in one call
func (w *Writer) WriteDump(ctx context.Context, dump *model.DumpFile) error {
	log := w.logger.WithContext(ctx)

	data, err := w.encoder.Encode(dump)
	if err != nil {
		log.WithError(err).Error("Failed to serialize dump")
		return errors.NewSerializationError("failed to serialize dump").
			WithCause(err).
			WithComponent("writer")
	}

	if err := w.sink.Write(ctx, data); err != nil {
		log.WithError(err).Errorf("Failed to write dump to %s", w.sink.Location())
		return errors.NewPersistenceError("failed to write dump").
			WithCause(err).
			WithComponent("writer").
			WithDetail("destination", w.sink.Location())
	}

	log.WithFields(map[string]interface{}{
		"bytes":       len(data),
		"destination": w.sink.Location(),
	}).Info("Dump written")
	return nil
}
