// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"github.com/leseb/docprep/pkg/llm"
)

func TestSplitTurns(t *testing.T) {
	history, last := splitTurns([]llm.Message{
		{Role: llm.RoleUser, Content: "q1"},
		{Role: llm.RoleAssistant, Content: "a1"},
		{Role: llm.RoleUser, Content: "q2"},
	})
	if last != "q2" {
		t.Errorf("last = %q", last)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Errorf("roles = %s, %s", history[0].Role, history[1].Role)
	}
	if txt, ok := history[1].Parts[0].(genai.Text); !ok || string(txt) != "a1" {
		t.Errorf("history[1] part = %#v", history[1].Parts[0])
	}
}

func TestNew_RequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := New(context.Background(), ""); err == nil {
		t.Error("expected error without api key")
	}
}
