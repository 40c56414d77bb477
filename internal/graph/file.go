package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"graph-diag/pkg/api"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

var ErrEmptyGraph = errors.New("graph has no edges")

// graphDocument is the schema shared by yaml and json graph files, it mirrors
// the classify request body.
type graphDocument struct {
	Edges [][]string `json:"edges" yaml:"edges"`
}

func (d graphDocument) toEdges() ([]api.Edge, error) {
	edges := make([]api.Edge, 0, len(d.Edges))
	for i, pair := range d.Edges {
		if len(pair) != 2 {
			return nil, fmt.Errorf("edge %d: expected 2 endpoints, got %d", i, len(pair))
		}
		if pair[0] == "" || pair[1] == "" {
			return nil, fmt.Errorf("edge %d: empty endpoint", i)
		}
		edges = append(edges, api.NewEdge(pair[0], pair[1]))
	}
	return edges, nil
}

// LoadEdges reads a graph from disk. The format is picked from the extension:
// .yaml/.yml and .json hold {"edges": [[u, v], ...]}, anything else is parsed
// as an edge list.
func LoadEdges(path string) ([]api.Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading graph file: %w", err)
	}

	var edges []api.Edge
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc graphDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error parsing yaml graph '%s': %w", path, err)
		}
		edges, err = doc.toEdges()
	case ".json":
		var doc graphDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error parsing json graph '%s': %w", path, err)
		}
		edges, err = doc.toEdges()
	default:
		edges, err = ParseEdgeList(path, string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("invalid graph '%s': %w", path, err)
	}

	if len(edges) == 0 {
		return nil, fmt.Errorf("invalid graph '%s': %w", path, ErrEmptyGraph)
	}
	return edges, nil
}
