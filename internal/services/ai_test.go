package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCompletion struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newCompletionServer(t *testing.T, content *string, captured *capturedCompletion, title *string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		*title = r.Header.Get("X-Title")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))

		choices := []map[string]any{}
		if content != nil {
			choices = append(choices, map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": *content},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   captured.Model,
			"choices": choices,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAIService_Generate(t *testing.T) {
	answer := "Hi! You have **2** high priority tasks."
	var captured capturedCompletion
	var title string
	server := newCompletionServer(t, &answer, &captured, &title)

	service := NewAIService(AIConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})
	require.NotNil(t, service)

	content, err := service.Generate(context.Background(), "What next?", "Total tasks: 3")
	require.NoError(t, err)
	assert.Equal(t, answer, content)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Context: Total tasks: 3\n\nUser question: What next?", captured.Messages[1].Content)
	assert.Equal(t, assistantTitle, title)
}

func TestAIService_FallbackWithoutChoices(t *testing.T) {
	var captured capturedCompletion
	var title string
	server := newCompletionServer(t, nil, &captured, &title)

	service := NewAIService(AIConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	content, err := service.Generate(context.Background(), "Hello", "")
	require.NoError(t, err)
	assert.Equal(t, FallbackAIResponse, content)
}

func TestAIService_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model unavailable","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	service := NewAIService(AIConfig{APIKey: "test-key", BaseURL: server.URL, Model: "test-model"})

	_, err := service.Generate(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, ErrAIRequestFailed)
}

func TestAIService_NotConfigured(t *testing.T) {
	service := NewAIService(AIConfig{})
	assert.Nil(t, service)

	_, err := service.Generate(context.Background(), "Hello", "")
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func TestAIService_InputRequired(t *testing.T) {
	service := NewAIService(AIConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:0", Model: "m"})

	_, err := service.Generate(context.Background(), "  ", "ctx")
	assert.ErrorIs(t, err, ErrAIInputRequired)
}
