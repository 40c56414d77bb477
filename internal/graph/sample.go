package graph

import "graph-diag/pkg/api"

// SampleTree is the fixed graph sent by the connectivity probe: B is the root
// with children A, C and D.
func SampleTree() []api.Edge {
	return []api.Edge{
		api.NewEdge("A", "B"),
		api.NewEdge("B", "C"),
		api.NewEdge("B", "D"),
	}
}
