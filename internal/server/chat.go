// internal/server/chat.go
package server

import (
	"net/http"

	"nutriplan/internal/llm"
)

// ChatFrame is one websocket reply: the raw assistant message plus the
// structured parse of it. Clients render the plan when Outcome.Status is
// "found" and fall back to Comments (or the raw message) otherwise.
type ChatFrame struct {
	Assistant string       `json:"assistant,omitempty"`
	Outcome   ParseOutcome `json:"outcome"`
	Error     string       `json:"error,omitempty"`
}

// handleChat runs the conversational side-channel: every incoming text
// frame is sent to the gateway as a user message, and the reply goes
// back through the parsing pipeline before being pushed to the client.
func (s *PlanServer) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("chat session started")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.log.Debug().Err(err).Msg("chat session closed")
			return
		}

		content, err := s.completer.Complete(r.Context(), llm.ChatSystemPrompt, string(msg))
		if err != nil {
			s.log.Error().Err(err).Msg("chat completion failed")
			if werr := conn.WriteJSON(ChatFrame{Error: "completion failed, please retry"}); werr != nil {
				return
			}
			continue
		}

		frame := ChatFrame{
			Assistant: content,
			Outcome:   s.processMessage(content, nil),
		}
		if err := conn.WriteJSON(frame); err != nil {
			s.log.Debug().Err(err).Msg("chat write failed")
			return
		}
	}
}
