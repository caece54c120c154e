// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docprep/pkg/llm"
)

// InvokeRequest is the body accepted by POST /invoke.
type InvokeRequest struct {
	Prompt string `json:"prompt"`
}

// handleInvoke handles POST /invoke, a single-prompt wrapper around the
// chat model. Every failure is reported as 500 {"error": "..."}.
func (h *Handler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)
	chat := h.svc.Config.Chat

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("Failed to parse invoke request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if req.Prompt == "" {
		req.Prompt = chat.DefaultPrompt
	}

	client, err := h.svc.LLM(r.Context())
	if err != nil {
		h.logger.Error("Language model unavailable", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	text, err := llm.Text(r.Context(), client, llm.Request{
		ModelID:     chat.ModelID,
		Prompt:      req.Prompt,
		Temperature: chat.Temperature,
		MaxTokens:   chat.MaxTokens,
	})
	if err != nil {
		h.logger.Error("Invoke failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

// ChatMessage is one message of an OpenAI-shaped chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the subset of the OpenAI request accepted by
// POST /v1/chat/completions.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// ChatCompletionChoice is one answer in a ChatCompletionResponse.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionUsage reports token counts.
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse mirrors the OpenAI chat.completion object.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   ChatCompletionUsage    `json:"usage"`
}

// toLLMRequest folds system messages into Request.System and keeps the
// remaining turns in order.
func (req *ChatCompletionRequest) toLLMRequest(defaults llm.Request) (llm.Request, error) {
	out := defaults
	if req.Model != "" {
		out.ModelID = req.Model
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		out.MaxTokens = *req.MaxTokens
	}
	var system []string
	for _, m := range req.Messages {
		switch m.Role {
		case "system", "developer":
			system = append(system, m.Content)
		case llm.RoleUser, llm.RoleAssistant:
			out.Messages = append(out.Messages, llm.Message{Role: m.Role, Content: m.Content})
		default:
			return llm.Request{}, errors.New("unsupported message role: " + m.Role)
		}
	}
	out.System = strings.Join(system, "\n")
	return out, out.Validate()
}

func finishReason(stop string) string {
	switch stop {
	case "", "end_turn", "stop", "stop_sequence", "STOP":
		return "stop"
	case "max_tokens", "length", "MAX_TOKENS":
		return "length"
	default:
		return strings.ToLower(stop)
	}
}

// handleChatCompletions handles POST /v1/chat/completions
// This is a non-streaming pass-through to the configured model.
func (h *Handler) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to parse chat completion request", "error", err)
		h.writeError(w, statusForBody(err), "invalid_request", "Failed to parse request body")
		return
	}
	if req.Stream {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Streaming is not supported")
		return
	}

	chat := h.svc.Config.Chat
	llmReq, err := req.toLLMRequest(llm.Request{
		ModelID:     chat.ModelID,
		Temperature: chat.Temperature,
		MaxTokens:   chat.MaxTokens,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.logger.Info("Processing chat completion request",
		"model", llmReq.ModelID,
		"messages", len(req.Messages))

	client, err := h.svc.LLM(r.Context())
	if err != nil {
		h.logger.Error("Language model unavailable", "error", err)
		h.writeError(w, http.StatusServiceUnavailable, "model_unavailable", err.Error())
		return
	}
	resp, err := client.Invoke(r.Context(), llmReq)
	if err != nil {
		h.logger.Error("Failed to create chat completion", "error", err)
		h.writeError(w, http.StatusInternalServerError, "completion_error", err.Error())
		return
	}

	model := resp.Model
	if model == "" {
		model = llmReq.ModelID
	}
	out := ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatCompletionChoice{{
			Message:      ChatMessage{Role: llm.RoleAssistant, Content: resp.Text},
			FinishReason: finishReason(resp.StopReason),
		}},
		Usage: ChatCompletionUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	writeJSON(w, http.StatusOK, out)

	h.logger.Info("Chat completion sent",
		"completion_id", out.ID,
		"model", out.Model,
		"usage_tokens", out.Usage.TotalTokens)
}
