package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyLevelsSerializeAsArrays(t *testing.T) {
	dump := NewDumpFile()
	dump.Databases = append(dump.Databases, *NewDatabase("DB2"))

	out, err := json.Marshal(dump)
	require.NoError(t, err)
	assert.JSONEq(t, `{"databases":[{"name":"DB2","collections":[]}]}`, string(out))

	out, err = json.Marshal(NewCollection("c"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"c","documents":[]}`, string(out))
}

func TestDumpFile_Stats(t *testing.T) {
	dump := &DumpFile{Databases: []Database{
		{Name: "a", Collections: []Collection{
			{Name: "x", Documents: []Document{{"id": "1"}, {"id": "2"}}},
			{Name: "y", Documents: []Document{}},
		}},
		{Name: "b", Collections: []Collection{}},
	}}

	assert.Equal(t, Stats{Databases: 2, Collections: 2, Documents: 2}, dump.Stats())
	assert.Equal(t, 2, dump.Databases[0].DocumentCount())
}

func TestExportReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewExportReport("run-1", start)
	assert.False(t, r.Degraded())

	r.SkipDatabase("B", errors.New("403"))
	r.SkipCollection("A", "orders", fmt.Errorf("page 2: %w", errors.New("timeout")))

	assert.True(t, r.Degraded())
	assert.Equal(t, []SkippedSubtree{
		{Database: "B", Reason: "403"},
		{Database: "A", Collection: "orders", Reason: "page 2: timeout"},
	}, r.Skipped)

	r.Finish(&DumpFile{Databases: []Database{{Name: "A", Collections: []Collection{}}}}, start.Add(3*time.Second))
	assert.Equal(t, 3*time.Second, r.Duration())
	assert.Equal(t, 1, r.Totals.Databases)
}

func TestCredentials(t *testing.T) {
	c := Credentials{Account: "foo", Key: "c2VjcmV0"}
	assert.Equal(t, "https://foo.documents.azure.com:443/", c.Endpoint())
	assert.NotContains(t, c.String(), "c2VjcmV0")
	assert.NotContains(t, fmt.Sprintf("%v", c), "c2VjcmV0")
}
