package api

// Edge is an undirected edge between two node identifiers. It encodes as a
// two element JSON array: ["A", "B"].
type Edge [2]string

func NewEdge(from, to string) Edge {
	return Edge{from, to}
}

func (e Edge) From() string {
	return e[0]
}

func (e Edge) To() string {
	return e[1]
}

type ClassifyRequest struct {
	Edges []Edge `json:"edges"`
}
