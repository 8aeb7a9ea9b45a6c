// Package extract pulls the structured part out of free-text oracle answers.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"netgraphx/internal/graph"

	"gopkg.in/yaml.v3"
)

const (
	openMarker  = "```json"
	closeMarker = "```"
)

var (
	// ErrNoBlock means the answer has no opening json fence.
	ErrNoBlock = errors.New("no fenced json block found")
	// ErrUnterminated means the opening fence is never closed.
	ErrUnterminated = errors.New("fenced json block is not terminated")
	// ErrMalformed means a block was found but is not an adjacency list.
	ErrMalformed = errors.New("fenced block is not a valid adjacency list")
)

// Block returns the trimmed text between the first "```json" marker and the
// next "```" after it.
func Block(text string) (string, error) {
	start := strings.Index(text, openMarker)
	if start == -1 {
		return "", ErrNoBlock
	}
	start += len(openMarker)

	end := strings.Index(text[start:], closeMarker)
	if end == -1 {
		return "", ErrUnterminated
	}

	return strings.TrimSpace(text[start : start+end]), nil
}

// IsExtractionError reports whether err means no usable block was found,
// as opposed to a block that failed to parse.
func IsExtractionError(err error) bool {
	return errors.Is(err, ErrNoBlock) || errors.Is(err, ErrUnterminated)
}

// Adjacency extracts the fenced block from an oracle answer and parses it
// as a mapping of node to neighbor list.
func Adjacency(text string) (graph.Adjacency, error) {
	block, err := Block(text)
	if err != nil {
		return nil, err
	}
	return ParseAdjacency(block)
}

// ParseAdjacency parses a block as {"node": ["neighbor", ...], ...}.
// Strict JSON is tried first; a YAML flow mapping is accepted as a fallback
// so single-quoted answers still parse. Null neighbor lists become empty.
func ParseAdjacency(block string) (graph.Adjacency, error) {
	raw, jsonErr := decodeJSON(block)
	if jsonErr != nil {
		var yamlErr error
		raw, yamlErr = decodeYAML(block)
		if yamlErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, jsonErr)
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an object, got %q", ErrMalformed, truncate(block, 40))
	}

	adj := make(graph.Adjacency, len(raw))
	for node, value := range raw {
		neighbors, err := toStrings(value)
		if err != nil {
			return nil, fmt.Errorf("%w: neighbors of %q: %v", ErrMalformed, node, err)
		}
		adj[node] = neighbors
	}
	return adj, nil
}

func decodeJSON(block string) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(block)))
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	// Anything after the first value means the block was not a single object.
	if dec.More() {
		return nil, errors.New("unexpected data after object")
	}
	return raw, nil
}

// decodeYAML walks the document node instead of unmarshalling into a map,
// so a repeated key overwrites the earlier one as it does for JSON.
func decodeYAML(block string) (map[string]interface{}, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return nil, nil
	case root.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("line %d: expected a mapping", root.Line)
	}

	raw := make(map[string]interface{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var key string
		if err := root.Content[i].Decode(&key); err != nil {
			return nil, err
		}
		var value interface{}
		if err := root.Content[i+1].Decode(&value); err != nil {
			return nil, err
		}
		raw[key] = value
	}
	return raw, nil
}

func toStrings(value interface{}) ([]string, error) {
	if value == nil {
		return []string{}, nil
	}
	items, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected a string, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
