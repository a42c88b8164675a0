// Package server exposes the conversation over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"vacancybot/internal/flow"
	"vacancybot/internal/vacancy"
)

const maxBodyBytes = 64 << 10

// TurnRunner is the slice of the flow the HTTP layer needs.
type TurnRunner interface {
	Turn(ctx context.Context, sessionID, message string) (*flow.Result, error)
	Generate(ctx context.Context, sessionID string) (*flow.Result, error)
	GenerateFromRecord(ctx context.Context, rec vacancy.Vacancy) (*flow.Result, error)
}

type Handler struct {
	Flow   TurnRunner
	Logger *zap.Logger
}

func NewHandler(f TurnRunner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Flow: f, Logger: logger}
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID            string           `json:"sessionId"`
	Message              string           `json:"message"`
	IsComplete           bool             `json:"isComplete"`
	CompletionPercentage int              `json:"completionPercentage"`
	Record               *vacancy.Vacancy `json:"record,omitempty"`
	WebhookSuccess       *bool            `json:"webhookSuccess,omitempty"`
}

// generateRequest addresses either an existing chat session or an
// explicit record assembled by the caller.
type generateRequest struct {
	SessionID string           `json:"sessionId,omitempty"`
	Record    *vacancy.Vacancy `json:"record,omitempty"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Flow.Turn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.Logger.Error("chat turn failed", zap.String("sessionId", req.SessionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	var res *flow.Result
	var err error
	if req.Record != nil {
		res, err = h.Flow.GenerateFromRecord(r.Context(), *req.Record)
	} else {
		res, err = h.Flow.Generate(r.Context(), req.SessionID)
	}
	if err != nil {
		var incomplete *flow.IncompleteError
		switch {
		case errors.As(err, &incomplete):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":         incomplete.Error(),
				"missingFields": missingFieldNames(incomplete.Missing),
			})
		case errors.Is(err, flow.ErrSessionNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		default:
			h.Logger.Error("forced generation failed", zap.String("sessionId", req.SessionID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(res))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty request body"})
		return false
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func toChatResponse(res *flow.Result) chatResponse {
	return chatResponse{
		SessionID:            res.SessionID,
		Message:              res.Message,
		IsComplete:           res.IsComplete,
		CompletionPercentage: res.CompletionPercentage,
		Record:               res.Record,
		WebhookSuccess:       res.WebhookSuccess,
	}
}

func missingFieldNames(fields []vacancy.FieldDescriptor) []string {
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.DisplayName
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, err := sonic.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}
