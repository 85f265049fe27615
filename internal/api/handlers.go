package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-sales-agent/internal/call"
	"ai-sales-agent/internal/response"
	"ai-sales-agent/internal/voice"
	"ai-sales-agent/libs/auth"
	"ai-sales-agent/libs/store"
)

// maxAudioBytes bounds respond-audio request bodies.
const maxAudioBytes = 10 << 20

const callTokenTTLSeconds = 3600

type startCallRequest struct {
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
}

type turnRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "AI Voice Sales Agent API"})
}

func (s *Server) handleStartCall(w http.ResponseWriter, r *http.Request) {
	var req startCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.CustomerName == "" || req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "customer_name and phone_number required")
		return
	}

	session, greeting, err := s.orch.StartCall(req.CustomerName, req.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Play the greeting; voice failure degrades to text and never blocks.
	if s.voice != nil {
		go s.voice.Speak(context.WithoutCancel(r.Context()), session.ID(), greeting)
	}

	resp := map[string]string{
		"call_id":       session.ID(),
		"message":       fmt.Sprintf("Calling %s...", req.CustomerName),
		"first_message": greeting,
	}
	if s.tokenSecret != "" {
		token, err := auth.GenerateCallToken(s.tokenSecret, session.ID(), callTokenTTLSeconds)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "mint call token")
			return
		}
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTurn serves both response-source variants; the protocol is the
// orchestrator's, only the injected source differs.
func (s *Server) handleTurn(source func() response.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callID := r.PathValue("id")
		if !s.authorized(w, r, callID) {
			return
		}

		var req turnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad request")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeError(w, http.StatusBadRequest, "message required")
			return
		}

		result, err := s.orch.HandleTurn(r.Context(), callID, req.Message, source())
		if err != nil {
			writeTurnError(w, err)
			return
		}

		if s.voice != nil {
			go s.voice.Speak(context.WithoutCancel(r.Context()), callID, result.Reply)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"reply":           result.Reply,
			"should_end_call": result.ShouldEnd,
		})
	}
}

// handleAudioTurn accepts raw customer audio, transcribes it and, when real
// speech was heard, runs a rule-based turn. Recognition failures answer with
// the legacy sentinel strings and leave the session untouched.
func (s *Server) handleAudioTurn(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("id")
	if !s.authorized(w, r, callID) {
		return
	}
	if s.voice == nil {
		writeError(w, http.StatusServiceUnavailable, "voice gateway not configured")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	heard := s.voice.Listen(r.Context(), audio)
	if heard.Outcome != voice.Heard {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":       "Could not capture speech",
			"customer_said": heard.Sentinel(),
			"speech":        heard.Sentinel(),
		})
		return
	}

	result, err := s.orch.HandleTurn(r.Context(), callID, heard.Text, s.ruleSource)
	if err != nil {
		writeTurnError(w, err)
		return
	}

	go s.voice.Speak(context.WithoutCancel(r.Context()), callID, result.Reply)

	writeJSON(w, http.StatusOK, map[string]any{
		"customer_said":   heard.Text,
		"agent_replied":   result.Reply,
		"should_end_call": result.ShouldEnd,
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("id")
	if !s.authorized(w, r, callID) {
		return
	}
	session, err := s.orch.Lookup(callID)
	if err != nil {
		writeTurnError(w, err)
		return
	}

	snap := session.Snapshot()
	history := make([]map[string]string, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		history = append(history, map[string]string{
			"sender":    string(t.Speaker),
			"text":      t.Text,
			"timestamp": t.At.Format(time.RFC3339Nano),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"call_id":       snap.ID,
		"customer_name": snap.CustomerName,
		"phone_number":  snap.PhoneNumber,
		"is_active":     snap.Active,
		"history":       history,
	})
}

func (s *Server) handleRAGStatus(w http.ResponseWriter, r *http.Request) {
	available := s.ragSource.Available()
	var errMsg any
	message := "RAG system ready"
	if !available {
		reason := s.ragSource.UnavailableReason()
		errMsg = reason
		message = fmt.Sprintf("RAG system not available: %s", reason)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available": available,
		"error":     errMsg,
		"message":   message,
	})
}

func (s *Server) handleCallRecord(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "call archive not configured")
		return
	}
	callID := r.PathValue("id")
	if !s.authorized(w, r, callID) {
		return
	}

	rec, err := s.archive.GetCallRecord(r.Context(), callID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Call record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load call record")
		return
	}

	turns := make([]map[string]string, 0, len(rec.Turns))
	for _, t := range rec.Turns {
		turns = append(turns, map[string]string{
			"sender":    t.Speaker,
			"text":      t.Text,
			"timestamp": t.At.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"call_id":       rec.ID,
		"customer_name": rec.CustomerName,
		"phone_number":  rec.PhoneNumber,
		"started_at":    rec.StartedAt.Format(time.RFC3339Nano),
		"ended_at":      rec.EndedAt.Format(time.RFC3339Nano),
		"history":       turns,
	})
}

// authorized enforces the per-call bearer token when a secret is configured.
// Tokens are accepted from the Authorization header or, for websocket
// clients, a "token" query parameter.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request, callID string) bool {
	if s.tokenSecret == "" {
		return true
	}
	tokenString := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimPrefix(h, "Bearer ")
	}
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "missing call token")
		return false
	}
	sub, err := auth.VerifyCallToken(s.tokenSecret, tokenString)
	if err != nil || sub != callID {
		writeError(w, http.StatusUnauthorized, "invalid call token")
		return false
	}
	return true
}

func writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, call.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Call not found")
	case errors.Is(err, call.ErrSessionClosed):
		writeError(w, http.StatusBadRequest, "Call has ended")
	case errors.Is(err, call.ErrEmptyTurnText):
		writeError(w, http.StatusBadRequest, "message required")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors the {"detail": ...} error shape callers already expect.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
