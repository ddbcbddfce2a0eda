// Package graph turns a flat @graph array into nested trees by replacing
// references with the nodes they point at. It works on generic JSON values and
// knows nothing about entities or payloads.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/diwise/ro-crate/pkg/rocrate/errors"
	"github.com/diwise/ro-crate/pkg/rocrate/types"
)

type expander struct {
	index   map[string]map[string]any
	inlined map[string]bool
}

// Expand replaces every {"@id": x} reference with a copy of node x. A node
// that is already being expanded higher up the same branch is left as a
// reference. Top level nodes that got inlined somewhere are dropped from the
// result. The input is not modified.
func Expand(nodes []any) []any {
	x := &expander{
		index:   map[string]map[string]any{},
		inlined: map[string]bool{},
	}

	for _, n := range nodes {
		if node, ok := n.(map[string]any); ok {
			if id, ok := node[types.KeywordID].(string); ok {
				x.index[id] = node
			}
		}
	}

	expanded := make([]any, 0, len(nodes))
	ids := make([]string, 0, len(nodes))

	for _, n := range nodes {
		node, ok := n.(map[string]any)
		if !ok {
			expanded = append(expanded, n)
			ids = append(ids, "")
			continue
		}

		id, _ := node[types.KeywordID].(string)
		if id != "" && x.inlined[id] {
			continue
		}

		visited := map[string]bool{}
		if id != "" {
			visited[id] = true
		}

		expanded = append(expanded, x.object(node, visited))
		ids = append(ids, id)
	}

	result := make([]any, 0, len(expanded))
	for i, n := range expanded {
		if ids[i] == "" || !x.inlined[ids[i]] {
			result = append(result, n)
		}
	}

	return result
}

func (x *expander) value(v any, visited map[string]bool) any {
	switch typed := v.(type) {
	case map[string]any:
		if id, ok := reference(typed); ok {
			target, known := x.index[id]
			if !known || visited[id] {
				return maps.Clone(typed)
			}

			x.inlined[id] = true

			branch := maps.Clone(visited)
			branch[id] = true
			return x.object(target, branch)
		}
		return x.object(typed, visited)
	case []any:
		result := make([]any, 0, len(typed))
		for _, element := range typed {
			result = append(result, x.value(element, visited))
		}
		return result
	default:
		return v
	}
}

func (x *expander) object(node map[string]any, visited map[string]bool) map[string]any {
	result := make(map[string]any, len(node))
	for key, v := range node {
		if key == types.KeywordID || key == types.KeywordType {
			result[key] = v
			continue
		}
		result[key] = x.value(v, visited)
	}
	return result
}

func reference(node map[string]any) (string, bool) {
	if len(node) != 1 {
		return "", false
	}
	id, ok := node[types.KeywordID].(string)
	return id, ok
}

// ExpandDocument expands the @graph of a crate metadata document and returns
// the document with the nested graph
func ExpandDocument(document []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()

	doc := map[string]any{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes, ok := doc[types.KeywordGraph].([]any)
	if !ok {
		return nil, errors.NewMalformedCrateError("document has no " + types.KeywordGraph + " array")
	}

	doc[types.KeywordGraph] = Expand(nodes)

	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
