package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"graph-diag/pkg/api"
	"io"
	"log/slog"
	"net/url"
)

type Prober struct {
	classifier Classifier
	out        io.Writer
	port       string
}

// NewProber builds a probe that reports to out. The endpoint is only used to
// name the port in the connection hint.
func NewProber(classifier Classifier, endpoint string, out io.Writer) *Prober {
	return &Prober{
		classifier: classifier,
		out:        out,
		port:       endpointPort(endpoint),
	}
}

// Run sends the graph once and prints the outcome. It returns true only when
// the classifier answered 200 with a JSON body.
func (p *Prober) Run(ctx context.Context, edges []api.Edge) bool {
	result, err := p.classifier.Classify(ctx, edges)
	if err != nil {
		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr):
			slog.Warn("classifier returned error status", "status_code", statusErr.Code, "body", truncate(statusErr.Body, 256))
			fmt.Fprintf(p.out, "❌ Backend error: %d\n", statusErr.Code)
		case errors.Is(err, ErrConnection):
			fmt.Fprintf(p.out, "❌ Cannot connect to backend. Make sure it's running on port %s\n", p.port)
		default:
			fmt.Fprintf(p.out, "❌ Error: %v\n", err)
		}
		return false
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, bytes.TrimSpace(result), "", "  "); err != nil {
		fmt.Fprintf(p.out, "❌ Error: %v\n", err)
		return false
	}

	fmt.Fprintln(p.out, "✅ Backend is working!")
	fmt.Fprintf(p.out, "Classification result: %s\n", pretty.String())
	return true
}

func endpointPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "unknown"
	}
	if port := u.Port(); port != "" {
		return port
	}
	switch u.Scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return "unknown"
}
