package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIClientValidatesConfig(t *testing.T) {
	if _, err := NewOpenAIClient(OpenAIConfig{APIKey: "k", Model: "m"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewOpenAIClient(OpenAIConfig{BaseURL: "http://x", Model: "m"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewOpenAIClient(OpenAIConfig{BaseURL: "http://x", APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestCompleteSendsTranscriptAndReturnsContent(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "```sql\nSELECT 1\n```"}},
			},
		})
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "secret", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}

	content, err := client.Complete(context.Background(), ChatRequest{
		Messages:    []Message{System("be terse"), User("total sales?")},
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "```sql\nSELECT 1\n```" {
		t.Fatalf("content = %q", content)
	}
	if captured["model"] != "gpt-test" {
		t.Fatalf("model = %v", captured["model"])
	}
	if captured["temperature"] != 0.1 {
		t.Fatalf("temperature = %v", captured["temperature"])
	}
	if messages, ok := captured["messages"].([]any); !ok || len(messages) != 2 {
		t.Fatalf("messages = %v", captured["messages"])
	}
}

func TestCompleteSurfacesUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{User("q")}}); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if _, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{User("q")}}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
