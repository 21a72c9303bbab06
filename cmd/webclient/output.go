package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(f string) error {
	switch f {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json or yaml)", f)
}

// render writes v using its JSON field names in either format.
func render(w io.Writer, format string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return renderBody(w, format, b)
}

// renderBody re-encodes a JSON document. Empty bodies print nothing.
func renderBody(w io.Writer, format string, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
}

// parseSet turns repeated key=value flags into a payload. Values that parse
// as JSON (numbers, booleans, null, objects, arrays, quoted strings) keep
// their type; anything else is a plain string.
func parseSet(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		var typed any
		if err := json.Unmarshal([]byte(v), &typed); err == nil {
			out[k] = typed
			continue
		}
		out[k] = v
	}
	return out, nil
}
