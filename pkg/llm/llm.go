// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the language-model collaborator as a single
// request/response call. Backends live in subpackages and register
// themselves with Providers.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/leseb/docprep/pkg/provider"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Providers is the registry of language-model backends.
var Providers = provider.NewRegistry[Client]("llm")

// Roles accepted in Message.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single model invocation. Prompt is sent as the final user
// turn after Messages.
type Request struct {
	ModelID     string
	System      string
	Messages    []Message
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Turns returns Messages followed by Prompt as a user turn, when set.
func (r Request) Turns() []Message {
	turns := append([]Message(nil), r.Messages...)
	if r.Prompt != "" {
		turns = append(turns, Message{Role: RoleUser, Content: r.Prompt})
	}
	return turns
}

// Validate checks that the request carries at least one user turn and a
// model identifier.
func (r Request) Validate() error {
	if r.ModelID == "" {
		return errors.New("model id is required")
	}
	turns := r.Turns()
	if len(turns) == 0 {
		return errors.New("prompt is required")
	}
	for _, m := range turns {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("unsupported message role: %s", m.Role)
		}
	}
	return nil
}

// Usage reports token counts when the backend returns them.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the model's answer.
type Response struct {
	Text       string
	Model      string
	StopReason string
	Usage      Usage
}

// Client invokes a hosted model.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// Text invokes c and returns only the answer text, failing with
// ErrEmptyResponse when there is none.
func Text(ctx context.Context, c Client, req Request) (string, error) {
	resp, err := c.Invoke(ctx, req)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Text == "" {
		return "", ErrEmptyResponse
	}
	return resp.Text, nil
}
