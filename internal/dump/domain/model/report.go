package model

import "time"

// SkippedSubtree records a database or collection that was dropped from the
// dump because one of its page fetches failed. Collection is empty when the
// whole database was dropped.
type SkippedSubtree struct {
	Database   string `json:"database"`
	Collection string `json:"collection,omitempty"`
	Reason     string `json:"reason"`
}

// ExportReport describes how an export went, including what it left out
type ExportReport struct {
	ExportID   string           `json:"exportId"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Totals     Stats            `json:"totals"`
	Skipped    []SkippedSubtree `json:"skipped"`
}

// NewExportReport starts a report for the given run
func NewExportReport(exportID string, startedAt time.Time) *ExportReport {
	return &ExportReport{
		ExportID:  exportID,
		StartedAt: startedAt,
		Skipped:   []SkippedSubtree{},
	}
}

// SkipDatabase records a database dropped in its entirety
func (r *ExportReport) SkipDatabase(database string, cause error) {
	r.Skipped = append(r.Skipped, SkippedSubtree{Database: database, Reason: cause.Error()})
}

// SkipCollection records a single collection dropped from its database
func (r *ExportReport) SkipCollection(database, collection string, cause error) {
	r.Skipped = append(r.Skipped, SkippedSubtree{Database: database, Collection: collection, Reason: cause.Error()})
}

// Degraded reports whether any subtree was dropped
func (r *ExportReport) Degraded() bool {
	return len(r.Skipped) > 0
}

// Finish stamps the end time and the totals of the assembled dump
func (r *ExportReport) Finish(dump *DumpFile, finishedAt time.Time) {
	r.FinishedAt = finishedAt
	if dump != nil {
		r.Totals = dump.Stats()
	}
}

// Duration is the wall time between start and finish
func (r *ExportReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
