// Package oracle talks to the inference service that turns a configuration
// document or a diagram image into a free-text topology answer.
package oracle

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"netgraphx/internal/retry"
)

//go:embed prompts/config.txt
var configPrompt string

//go:embed prompts/diagram.txt
var diagramPrompt string

// ErrEmptyAnswer is returned when the service answers with no text.
var ErrEmptyAnswer = errors.New("oracle returned an empty answer")

// Request is one inference call: an instruction plus either document text,
// an image, or both.
type Request struct {
	Instruction string
	Text        string
	Image       []byte
	ImageMIME   string
}

// Client sends a request to the oracle and returns its raw answer.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ConfigRequest asks for the adjacency list of a serialized configuration
// document.
func ConfigRequest(document string) Request {
	return Request{Instruction: configPrompt, Text: document}
}

// DiagramRequest asks for the adjacency list drawn in a PNG diagram.
func DiagramRequest(png []byte) Request {
	return Request{Instruction: diagramPrompt, Image: png, ImageMIME: "image/png"}
}

type retrying struct {
	next     Client
	attempts int
	backoff  time.Duration
}

// WithRetry retries failed calls with exponential backoff. One attempt
// returns c unchanged.
func WithRetry(c Client, attempts int, backoff time.Duration) Client {
	if attempts <= 1 {
		return c
	}
	return &retrying{next: c, attempts: attempts, backoff: backoff}
}

func (r *retrying) Generate(ctx context.Context, req Request) (string, error) {
	var answer string
	err := retry.Do(ctx, r.attempts, r.backoff, func() error {
		var err error
		answer, err = r.next.Generate(ctx, req)
		return err
	})
	return answer, err
}
