package graph

import (
	"fmt"
	"graph-diag/pkg/api"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

/*
Edge lists are plain text, one edge per line:

File  := EOL* ( Line EOL* )*
Line  := <node> <node> [ <weight> ]

Tokens are separated by spaces or tabs, "#" starts a comment that runs to the
end of the line. The optional weight must be numeric; it is checked but not
forwarded, the classify payload only carries node pairs.
*/

var (
	edgeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Node", Pattern: `[^\s#]+`},
	})

	edgeParser = participle.MustBuild[edgeFile](
		participle.Lexer(edgeLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

type edgeFile struct {
	Lines []*edgeLine `parser:"EOL* ( @@ EOL* )*"`
}

type edgeLine struct {
	Pos    lexer.Position
	Tokens []string `parser:"@Node+"`
}

func (l *edgeLine) toEdge() (api.Edge, error) {
	if len(l.Tokens) < 2 || len(l.Tokens) > 3 {
		return api.Edge{}, fmt.Errorf("line %d: expected 'u v [w]', got %d fields", l.Pos.Line, len(l.Tokens))
	}
	if len(l.Tokens) == 3 {
		if _, err := strconv.ParseFloat(l.Tokens[2], 64); err != nil {
			return api.Edge{}, fmt.Errorf("line %d: invalid weight '%s'", l.Pos.Line, l.Tokens[2])
		}
	}
	return api.NewEdge(l.Tokens[0], l.Tokens[1]), nil
}

// ParseEdgeList parses edge-list text. The name is only used in error messages.
func ParseEdgeList(name, text string) ([]api.Edge, error) {
	file, err := edgeParser.ParseString(name, text)
	if err != nil {
		return nil, fmt.Errorf("error parsing edge list '%s': %w", name, err)
	}

	edges := make([]api.Edge, 0, len(file.Lines))
	for _, line := range file.Lines {
		edge, err := line.toEdge()
		if err != nil {
			return nil, fmt.Errorf("error parsing edge list '%s': %w", name, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
