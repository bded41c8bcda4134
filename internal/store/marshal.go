package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ai4bd/brick/internal/graph"
)

// marshalJSON encodes v as JSON TEXT with HTML escaping disabled, so
// names like "a<b" are stored verbatim.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

func marshalDocument(doc *graph.Document) (string, error) {
	data, err := marshalJSON(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func unmarshalDocument(data string) (*graph.Document, error) {
	var doc graph.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

func marshalAdvisories(advisories []string) (string, error) {
	if advisories == nil {
		advisories = []string{}
	}
	data, err := marshalJSON(advisories)
	if err != nil {
		return "", fmt.Errorf("marshal advisories: %w", err)
	}
	return data, nil
}

func unmarshalAdvisories(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal advisories: %w", err)
	}
	return out, nil
}
