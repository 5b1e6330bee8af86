package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChatClientSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Gliomas are tumors that arise from glial cells.\n\nCommon symptoms include headaches."}`))
	}))
	defer ts.Close()

	client := NewChatClient(ts.URL, 5*time.Second, zap.NewNop())
	reply, err := client.Send(context.Background(), "What is a glioma?", ChatContext{
		TumorType:        "Glioma",
		Confidence:       92,
		Probabilities:    map[string]float64{"Glioma": 92},
		IsAutomaticQuery: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/chatbot/", gotPath)
	assert.Equal(t, "What is a glioma?", gotBody["message"])

	reqCtx := gotBody["context"].(map[string]interface{})
	assert.Equal(t, "Glioma", reqCtx["tumor_type"])
	assert.Equal(t, 92.0, reqCtx["confidence"])
	assert.Equal(t, true, reqCtx["is_automatic_query"])

	// embedded newlines survive untouched; rendering splits them later
	assert.Equal(t, "Gliomas are tumors that arise from glial cells.\n\nCommon symptoms include headaches.", reply)
}

func TestChatClientEmptyContext(t *testing.T) {
	var raw []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer ts.Close()

	client := NewChatClient(ts.URL, 5*time.Second, zap.NewNop())
	_, err := client.Send(context.Background(), "hello", ChatContext{})
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"context":{}`)
}

func TestChatClientMissingReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	client := NewChatClient(ts.URL, 5*time.Second, zap.NewNop())
	_, err := client.Send(context.Background(), "hello", ChatContext{})
	require.Error(t, err)
	assert.Equal(t, KindMalformed, Classify(err).Kind)
}

func TestChatClientServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"Rate limited"}`))
	}))
	defer ts.Close()

	client := NewChatClient(ts.URL, 5*time.Second, zap.NewNop())
	_, err := client.Send(context.Background(), "hello", ChatContext{})
	require.Error(t, err)

	apiErr := Classify(err)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "Rate limited", apiErr.Message)
}

func TestChatClientNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := NewChatClient(ts.URL, time.Second, zap.NewNop())
	_, err := client.Send(context.Background(), "hello", ChatContext{})
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Classify(err).Kind)
}
