package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "kimi-k2.5",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAI_TranslateStripsFence(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "kimi-k2.5", body["model"])
		assert.EqualValues(t, 8192, body["max_tokens"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		user := msgs[1].(map[string]any)["content"].(string)
		assert.Contains(t, user, "请翻译以下2条工具描述")
		assert.Contains(t, user, "1. Open pull requests\n2. Take notes")

		_ = json.NewEncoder(w).Encode(chatReply("```json\n[\"打开拉取请求\", \"记笔记\"]\n```"))
	})

	tr := NewOpenAI(&Config{Model: "kimi-k2.5", APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	assert.Equal(t, "openai:kimi-k2.5", tr.ModelID())

	out, err := tr.Translate(context.Background(), []string{"Open pull requests", "Take notes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"打开拉取请求", "记笔记"}, out)
}

func TestOpenAI_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatReply(`["你好"]`))
	})

	tr := NewOpenAI(&Config{Model: "m", APIKey: "sk-test", BaseURL: srv.URL + "/v1", RetryAttempts: 3, RetryDelay: time.Millisecond})
	out, err := tr.Translate(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"你好"}, out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAI_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	})

	tr := NewOpenAI(&Config{Model: "m", APIKey: "sk-test", BaseURL: srv.URL + "/v1", RetryAttempts: 3, RetryDelay: time.Millisecond})
	_, err := tr.Translate(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAI_CountMismatch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
		_ = json.NewEncoder(w).Encode(chatReply(`["只有一个"]`))
	})
	tr := NewOpenAI(&Config{Model: "m", APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := tr.Translate(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 translations, got 1")
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `["a"]`, stripFence("```json\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripFence("```\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, stripFence(`["a"]`))
}

func TestNewFromConfig_RequiresKey(t *testing.T) {
	_, err := NewFromConfig(&Config{Model: "m"})
	assert.Error(t, err)
	tr, err := NewFromConfig(&Config{Model: "m", APIKey: "k", BaseURL: "http://localhost/v1"})
	require.NoError(t, err)
	assert.NotNil(t, tr)
}
