package probe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"graph-diag/internal/graph"
	"graph-diag/internal/probe"
	"graph-diag/pkg/api"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func classifyServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/classify", handler)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server.URL + "/classify"
}

func runProbe(t *testing.T, endpoint string, timeout time.Duration) (bool, string) {
	t.Helper()
	var out bytes.Buffer
	prober := probe.NewProber(probe.NewClassifierClient(endpoint, timeout), endpoint, &out)
	ok := prober.Run(context.Background(), graph.SampleTree())
	return ok, out.String()
}

func TestProbe_Success(t *testing.T) {
	var received api.ClassifyRequest
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"label":"tree","confidence":0.93,"scores":{"tree":0.93,"cycle":0.07}}`)) //nolint:errcheck
	})

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.True(t, ok)
	assert.Equal(t, graph.SampleTree(), received.Edges)
	expected := "✅ Backend is working!\n" +
		"Classification result: {\n" +
		"  \"label\": \"tree\",\n" +
		"  \"confidence\": 0.93,\n" +
		"  \"scores\": {\n" +
		"    \"tree\": 0.93,\n" +
		"    \"cycle\": 0.07\n" +
		"  }\n" +
		"}\n"
	assert.Equal(t, expected, out)
}

func TestProbe_NotFound(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {})
	// The router only serves /classify, anything else is a 404.
	endpoint = endpoint + "/missing"

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.False(t, ok)
	assert.Equal(t, "❌ Backend error: 404\n", out)
}

func TestProbe_ServerError(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.False(t, ok)
	assert.Equal(t, "❌ Backend error: 500\n", out)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/classify"
	server.Close()

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.False(t, ok)
	assert.Contains(t, out, "❌ Cannot connect to backend. Make sure it's running on port")
	assert.NotContains(t, out, "goroutine")
}

func TestProbe_InvalidJSON(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`)) //nolint:errcheck
	})

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.False(t, ok)
	assert.Contains(t, out, "❌ Error: invalid json in classifier response")
}

func TestProbe_TrailingNewlineInBody(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{\"label\":\"tree\"}\n")) //nolint:errcheck
	})

	ok, out := runProbe(t, endpoint, 10*time.Second)

	assert.True(t, ok)
	assert.Equal(t, "✅ Backend is working!\n"+
		"Classification result: {\n"+
		"  \"label\": \"tree\"\n"+
		"}\n", out)
}

func TestProbe_ReadTimeout(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ok, out := runProbe(t, endpoint, 50*time.Millisecond)

	assert.False(t, ok)
	assert.Contains(t, out, "❌ Error: ")
	assert.NotContains(t, out, "Cannot connect")
	assert.NotContains(t, out, "Backend is working")
}

func TestProbe_RepeatedRunsPrintSameOutput(t *testing.T) {
	endpoint := classifyServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"b":1,"a":[1,2,3]}`)) //nolint:errcheck
	})

	ok1, out1 := runProbe(t, endpoint, 10*time.Second)
	ok2, out2 := runProbe(t, endpoint, 10*time.Second)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, out1, out2)
}

type stubClassifier struct {
	err error
}

func (s *stubClassifier) Classify(ctx context.Context, edges []api.Edge) (json.RawMessage, error) {
	return nil, s.err
}

func TestProbe_ConnectionHintNamesPort(t *testing.T) {
	tests := []struct {
		endpoint string
		port     string
	}{
		{endpoint: "http://localhost:5000/classify", port: "5000"},
		{endpoint: "http://classifier.internal/classify", port: "80"},
		{endpoint: "https://classifier.internal/classify", port: "443"},
	}

	for _, tc := range tests {
		var out bytes.Buffer
		prober := probe.NewProber(&stubClassifier{err: probe.ErrConnection}, tc.endpoint, &out)
		assert.False(t, prober.Run(context.Background(), graph.SampleTree()))
		assert.Equal(t, "❌ Cannot connect to backend. Make sure it's running on port "+tc.port+"\n", out.String())
	}
}
