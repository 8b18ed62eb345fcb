package model

// DumpFile is the root of an export. It is assembled once, serialized once,
// and never mutated after it is handed to the writer.
type DumpFile struct {
	Databases []Database `json:"databases" yaml:"databases"`
}

// Database is one logical database of the account, in listing order
type Database struct {
	Name        string       `json:"name" yaml:"name"`
	Collections []Collection `json:"collections" yaml:"collections"`
}

// Collection is one container within a database. Names are unique only
// within their parent database.
type Collection struct {
	Name      string     `json:"name" yaml:"name"`
	Documents []Document `json:"documents" yaml:"documents"`
}

// Document is a schemaless JSON object. Numbers are held as json.Number so
// their textual form survives the round trip unchanged.
type Document map[string]interface{}

// NewDumpFile returns an empty dump whose database list serializes as [].
func NewDumpFile() *DumpFile {
	return &DumpFile{Databases: []Database{}}
}

// NewDatabase returns an empty database whose collection list serializes as [].
func NewDatabase(name string) *Database {
	return &Database{Name: name, Collections: []Collection{}}
}

// NewCollection returns an empty collection whose document list serializes as [].
func NewCollection(name string) *Collection {
	return &Collection{Name: name, Documents: []Document{}}
}

// DocumentCount totals the documents across every collection of the database
func (d *Database) DocumentCount() int {
	total := 0
	for _, c := range d.Collections {
		total += len(c.Documents)
	}
	return total
}

// Stats summarises the shape of a dump
type Stats struct {
	Databases   int
	Collections int
	Documents   int
}

// Stats walks the dump and counts every level
func (f *DumpFile) Stats() Stats {
	s := Stats{Databases: len(f.Databases)}
	for i := range f.Databases {
		s.Collections += len(f.Databases[i].Collections)
		s.Documents += f.Databases[i].DocumentCount()
	}
	return s
}
