package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/labelkit/internal/model"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from a file extension; JSON is the default.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes list to w. YAML output goes through the JSON form so both
// formats carry the same field names.
func Encode(w io.Writer, list []model.Template, format Format) error {
	if list == nil {
		list = []model.Template{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}

	switch format {
	case FormatJSON, "":
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("encoding templates: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding templates as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses a file holding either one template or a list of them.
func Decode(data []byte, format Format) ([]model.Template, error) {
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("converting yaml: %w", err)
		}
		data = converted
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty template file")
	}

	var list []model.Template
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parsing templates: %w", err)
		}
	} else {
		var t model.Template
		if err := json.Unmarshal(trimmed, &t); err != nil {
			return nil, fmt.Errorf("parsing template: %w", err)
		}
		list = []model.Template{t}
	}
	for i := range list {
		list[i].Normalize()
	}
	return list, nil
}
