// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"errors"
	"testing"
)

func TestRequest_Turns(t *testing.T) {
	req := Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: "hello"}},
		Prompt:   "translate this",
	}
	turns := req.Turns()
	if len(turns) != 3 {
		t.Fatalf("len(Turns()) = %d, want 3", len(turns))
	}
	if turns[2].Role != RoleUser || turns[2].Content != "translate this" {
		t.Errorf("last turn = %+v", turns[2])
	}
	if len(req.Messages) != 2 {
		t.Errorf("Turns() mutated Messages")
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"prompt only", Request{ModelID: "m", Prompt: "x"}, false},
		{"messages only", Request{ModelID: "m", Messages: []Message{{Role: RoleUser, Content: "x"}}}, false},
		{"no model", Request{Prompt: "x"}, true},
		{"no turns", Request{ModelID: "m"}, true},
		{"system role in messages", Request{ModelID: "m", Messages: []Message{{Role: "system", Content: "x"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMockClient(t *testing.T) {
	c := NewMockClient()
	resp, err := c.Invoke(context.Background(), Request{ModelID: "test-model", Prompt: "Hello there"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "Mock response to: Hello there" {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.Usage.InputTokens != 2 {
		t.Errorf("InputTokens = %d, want 2", resp.Usage.InputTokens)
	}
}

type emptyClient struct{}

func (emptyClient) Invoke(context.Context, Request) (*Response, error) {
	return &Response{}, nil
}

func TestText_EmptyResponse(t *testing.T) {
	_, err := Text(context.Background(), emptyClient{}, Request{ModelID: "m", Prompt: "x"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestProviders_MockRegistered(t *testing.T) {
	c, err := Providers.New(context.Background(), "mock", nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Text(context.Background(), c, Request{ModelID: "m", Prompt: "ping"})
	if err != nil || got != "Mock response to: ping" {
		t.Errorf("Text() = %q, %v", got, err)
	}
}
