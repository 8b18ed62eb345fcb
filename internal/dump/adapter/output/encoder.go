package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cosmosdump/internal/dump/config"
	"cosmosdump/internal/dump/domain/model"
	"cosmosdump/internal/shared/errors"

	"gopkg.in/yaml.v3"
)

// Encoder turns a dump into bytes
type Encoder interface {
	Encode(dump *model.DumpFile) ([]byte, error)
	// Extension is the usual file suffix, without the dot
	Extension() string
}

// NewEncoder returns the encoder for format
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case config.FormatJSON:
		return JSONEncoder{}, nil
	case config.FormatYAML:
		return YAMLEncoder{}, nil
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported output format %q", format)).
			WithCause(errors.ErrInvalidFormat).
			WithComponent("output")
	}
}

// JSONEncoder writes pretty-printed JSON with two-space indentation
type JSONEncoder struct{}

// Encode implements Encoder
func (JSONEncoder) Encode(dump *model.DumpFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dump); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Extension implements Encoder
func (JSONEncoder) Extension() string { return "json" }

// YAMLEncoder writes the same tree as a YAML document
type YAMLEncoder struct{}

// Encode implements Encoder. json.Number values are emitted as YAML
// numbers rather than strings.
func (YAMLEncoder) Encode(dump *model.DumpFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlTree(dump)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension implements Encoder
func (YAMLEncoder) Extension() string { return "yaml" }

// yamlTree copies dump with every json.Number replaced by a numeric
// scalar node. yaml.v3 would otherwise quote them as strings.
func yamlTree(dump *model.DumpFile) *model.DumpFile {
	out := model.NewDumpFile()
	for _, db := range dump.Databases {
		database := model.NewDatabase(db.Name)
		for _, c := range db.Collections {
			collection := model.NewCollection(c.Name)
			for _, doc := range c.Documents {
				collection.Documents = append(collection.Documents, yamlValue(map[string]interface{}(doc)).(map[string]interface{}))
			}
			database.Collections = append(database.Collections, *collection)
		}
		out.Databases = append(out.Databases, *database)
	}
	return out
}

func yamlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = yamlValue(e)
		}
		return m
	case model.Document:
		return yamlValue(map[string]interface{}(t))
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = yamlValue(e)
		}
		return s
	default:
		return v
	}
}

// Decode parses a dump previously written in format
func Decode(data []byte, format string) (*model.DumpFile, error) {
	dump := &model.DumpFile{}
	switch format {
	case config.FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(dump); err != nil {
			return nil, errors.NewSerializationError("failed to parse JSON dump").WithCause(err).WithComponent("output")
		}
	case config.FormatYAML:
		if err := yaml.Unmarshal(data, dump); err != nil {
			return nil, errors.NewSerializationError("failed to parse YAML dump").WithCause(err).WithComponent("output")
		}
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported input format %q", format)).
			WithCause(errors.ErrInvalidFormat).
			WithComponent("output")
	}
	return dump, nil
}
