package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "cosmosdump context key " + string(c)
}

// ExportIDKey is the key for the per-run export identifier in context.Context
const ExportIDKey = contextKey("exportID")

// DatabaseIDKey is the key for the database being traversed
const DatabaseIDKey = contextKey("databaseID")

// CollectionIDKey is the key for the collection being traversed
const CollectionIDKey = contextKey("collectionID")

// OperationKey tags log lines with the command that produced them
const OperationKey = contextKey("operation")
