// Package llm wraps the external chat-completion service behind a
// narrow client interface so the pipeline can run against substitutes.
package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one transcript to complete, with the sampling
// temperature for the call.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
}

// Client returns the top completion's text for a transcript. Errors
// from the service (network, auth, rate limit) propagate unchanged.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

func System(content string) Message {
	return Message{Role: "system", Content: content}
}

func User(content string) Message {
	return Message{Role: "user", Content: content}
}
