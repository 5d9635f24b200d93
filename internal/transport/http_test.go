package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/graphmirror/internal/querylang"
)

func TestPostReturnsData(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "{ owndata_1: nodes(ids: [\"p1\"]) { id } }", body["query"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"owndata_1": {"nodes": [{"id": "p1"}]}}}`))
	}))
	defer server.Close()

	h := HTTP{Endpoint: server.URL, Headers: map[string]string{"Authorization": "Bearer tok"}}
	data, err := h.Post(context.Background(), querylang.Request{
		Body:      `{ owndata_1: nodes(ids: ["p1"]) { id } }`,
		Variables: map[string]any{},
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", gotAuth)

	section, ok := data["owndata_1"].(map[string]any)
	require.True(t, ok)
	nodes, ok := section["nodes"].([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
}

func TestPostSurfacesGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors": [{"message": "boom"}]}`))
	}))
	defer server.Close()

	h := HTTP{Endpoint: server.URL}
	_, err := h.Post(context.Background(), querylang.Request{Body: "{}"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestPostSurfacesNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
	}))
	defer server.Close()

	h := HTTP{Endpoint: server.URL}
	_, err := h.Post(context.Background(), querylang.Request{Body: "{}"})
	require.Error(t, err)
}
