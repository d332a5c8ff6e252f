package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"

	"github.com/gorilla/websocket"
)

// WSHandler drives one attempt over a websocket. Every inbound message gets
// exactly one reply, so writes stay on the reading goroutine.
type WSHandler struct {
	service  *app.QuizService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Option     *int   `json:"option"`
}

type flagPayload struct {
	QuestionID string `json:"questionId"`
}

type gotoPayload struct {
	Index *int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS starts an attempt (?quizId=) or resumes one (?attemptId=) and then
// handles answer, flag, goto, next, previous, review and submit messages.
// The connection closes after submit.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	attemptID := r.URL.Query().Get("attemptId")
	if quizID == "" && attemptID == "" {
		http.Error(w, "missing quizId or attemptId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var view domain.AttemptView
	if attemptID != "" {
		view, err = h.service.View(ctx, attemptID)
	} else {
		view, err = h.service.StartAttempt(ctx, quizID)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	attemptID = view.AttemptID
	if err := conn.WriteJSON(outboundMessage[domain.AttemptView]{Type: "attempt", Payload: view}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply, done := h.handle(ctx, attemptID, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("ws write error", "attempt_id", attemptID, "error", err)
			return
		}
		if done {
			return
		}
	}
}

func (h *WSHandler) handle(ctx context.Context, attemptID string, in inboundMessage) (outboundMessage[any], bool) {
	var (
		view domain.AttemptView
		err  error
	)
	switch in.Type {
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil || p.Option == nil {
			return errorMessage("invalid answer payload"), false
		}
		view, err = h.service.SelectAnswer(ctx, attemptID, p.QuestionID, *p.Option)
	case "flag":
		var p flagPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return errorMessage("invalid flag payload"), false
		}
		view, err = h.service.ToggleFlag(ctx, attemptID, p.QuestionID)
	case "goto":
		var p gotoPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil || p.Index == nil {
			return errorMessage("invalid goto payload"), false
		}
		view, err = h.service.GoTo(ctx, attemptID, *p.Index)
	case "next":
		view, err = h.service.Next(ctx, attemptID)
	case "previous":
		view, err = h.service.Previous(ctx, attemptID)
	case "review":
		review, err := h.service.Review(ctx, attemptID)
		if err != nil {
			return errorMessage(err.Error()), false
		}
		return outboundMessage[any]{Type: "review", Payload: review}, false
	case "submit":
		record, err := h.service.Submit(ctx, attemptID)
		if err != nil {
			return errorMessage(err.Error()), false
		}
		return outboundMessage[any]{Type: "result", Payload: record}, true
	default:
		return errorMessage("unsupported message type"), false
	}
	if err != nil {
		return errorMessage(err.Error()), false
	}
	return outboundMessage[any]{Type: "attempt", Payload: view}, false
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
