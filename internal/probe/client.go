package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"graph-diag/pkg/api"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrConnection = errors.New("unable to connect to classifier")

// StatusError is returned when the classifier answers with anything other
// than 200 OK.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier returned status %d", e.Code)
}

type Classifier interface {
	Classify(ctx context.Context, edges []api.Edge) (json.RawMessage, error)
}

type ClassifierClient struct {
	client *resty.Client
	url    string
}

var _ Classifier = (*ClassifierClient)(nil)

func NewClassifierClient(url string, timeout time.Duration) *ClassifierClient {
	return &ClassifierClient{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

// Classify makes a single POST to the classify endpoint. There are no retries.
func (c *ClassifierClient) Classify(ctx context.Context, edges []api.Edge) (json.RawMessage, error) {
	requestId := uuid.NewString()

	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-Id", requestId).
		SetBody(api.ClassifyRequest{Edges: edges}).
		Post(c.url)
	if err != nil {
		slog.Debug("classify request failed", "url", c.url, "request_id", requestId, "error", err)
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return nil, err
	}

	slog.Debug("classify response received", "url", c.url, "request_id", requestId, "status_code", res.StatusCode(), "duration", res.Time())

	if res.StatusCode() != http.StatusOK {
		return nil, &StatusError{Code: res.StatusCode(), Body: res.String()}
	}

	body := res.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid json in classifier response: %q", truncate(string(body), 64))
	}

	return json.RawMessage(body), nil
}

// isConnectionError reports whether the request never reached the server:
// refused, unreachable or timed out while dialing.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
