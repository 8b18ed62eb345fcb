package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cosmosdump/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLoggerWithConfig("info", "json")
}

func TestLogrusLogger_JSONFieldsFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("debug", "json", &buf)

	ctx := context.WithValue(context.Background(), contextkeys.ExportIDKey, "run-1")
	ctx = context.WithValue(ctx, contextkeys.DatabaseIDKey, "db1")
	log.WithContext(ctx).WithComponent("traversal").Info("dumping")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dumping", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "run-1", line["export_id"])
	assert.Equal(t, "db1", line["database_id"])
	assert.Equal(t, "traversal", line["component"])
	assert.NotContains(t, line, "collection_id")
}

func TestLogrusLogger_WithErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("info", "json", &buf)

	log.WithFields(map[string]interface{}{"foo": "bar"}).WithError(errors.New("boom")).Warn("skipped")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "bar", line["foo"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "warning", line["level"])
}

func TestLogrusLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter("warn", "text", &buf)

	log.Info("hidden")
	log.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.Errorf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("nonsense").String())
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warning", parseLevel("WARNING").String())
	assert.Equal(t, "error", parseLevel("error").String())
}
