package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
)

// WSHandler upgrades HTTP requests to websockets and runs one quiz session
// per connection, streaming the session's events to the client.
type WSHandler struct {
	repo     app.Repository
	timing   app.Timing
	policy   app.ScorePolicy
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(repo app.Repository, timing app.Timing, policy app.ScorePolicy, logger *log.Logger) *WSHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &WSHandler{
		repo:   repo,
		timing: timing,
		policy: policy,
		logger: logger,
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

type startPayload struct {
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
	CategoryID int    `json:"categoryId"`
	Curated    bool   `json:"curated"`
	QuestionID string `json:"questionId"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

// trySend queues an event without ever blocking the caller. Once the buffer
// is full (a slow or dead client) the event is dropped; the session state
// machine must never stall on the connection.
func trySend(send chan app.Event, e app.Event) bool {
	select {
	case send <- e:
		return true
	default:
		return false
	}
}

func (p startPayload) config() domain.Config {
	return domain.Config{
		TotalQuestions: p.Count,
		Difficulty:     domain.ParseDifficulty(p.Difficulty),
		CategoryID:     p.CategoryID,
		Curated:        p.Curated,
		QuestionID:     p.QuestionID,
	}
}

// ServeWS owns one connection: a dedicated runner, a writer goroutine, and a
// read loop for client commands. The runner's listener never blocks; if the
// client cannot keep up, events are dropped rather than stalling the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan app.Event, 64)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	runner := app.NewRunner(h.repo, h.timing, h.policy, app.ListenerFunc(func(e app.Event) {
		if !trySend(send, e) {
			h.logger.Printf("ws %s: dropping %s event, client too slow", conn.RemoteAddr(), e.Type)
		}
	}), h.logger)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go runner.Run(ctx)
	defer runner.Stop()

	go func() {
		defer close(writerDone)
		for {
			select {
			case e := <-send:
				if err := conn.WriteJSON(e); err != nil {
					h.logger.Printf("ws write error: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start", "restart":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(send, app.Event{Type: app.EventError, Message: "invalid start payload"})
				continue
			}
			cfg := payload.config()
			if inbound.Type == "restart" {
				runner.Restart(cfg)
			} else {
				runner.Begin(cfg)
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(send, app.Event{Type: app.EventError, Message: "invalid answer payload"})
				continue
			}
			runner.Answer(payload.Answer)
		default:
			trySend(send, app.Event{Type: app.EventError, Message: "unsupported message type"})
		}
	}

	close(done)
	<-writerDone
}
