package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mahmoud375/peace-cake/internal/app"
	"github.com/mahmoud375/peace-cake/internal/domain"
)

var (
	errInvalidPayload  = errors.New("invalid message payload")
	errUnsupportedType = errors.New("unsupported message type")
)

// WSHandler wires host connections into the game engine. Each connection
// drives one host view: it issues board actions and receives the session
// snapshot after every mutation, its own or another view's.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
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

type createSessionPayload struct {
	QuizID       string   `json:"quizId"`
	TeamNames    []string `json:"teamNames"`
	TimerSeconds int      `json:"timerSeconds"`
}

type startQuestionPayload struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
}

type resolveQuestionPayload struct {
	SessionID  string               `json:"sessionId"`
	QuestionID string               `json:"questionId"`
	TeamID     string               `json:"teamId"`
	Outcome    domain.Outcome       `json:"outcome"`
	Steal      *domain.StealAttempt `json:"stealAttempt"`
}

type setTurnPayload struct {
	SessionID string `json:"sessionId"`
	TeamIndex int    `json:"teamIndex"`
}

type sessionRefPayload struct {
	SessionID string `json:"sessionId"`
}

type resetAckPayload struct {
	SessionID string           `json:"sessionId"`
	Phase     domain.GamePhase `json:"phase"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives the host protocol.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// One subscription at a time; switching sessions cancels the previous one.
	var pumps sync.WaitGroup
	var cancelUpdates func()
	attach := func(sessionID string) {
		if cancelUpdates != nil {
			cancelUpdates()
			cancelUpdates = nil
		}
		updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
		if err != nil {
			return
		}
		cancelUpdates = cancel
		pumps.Add(1)
		go func() {
			defer pumps.Done()
			for {
				select {
				case snap, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage[any]{Type: "session", Payload: snap}:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
	}

	send <- outboundMessage[any]{Type: "rules", Payload: h.service.Rules()}

	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		attach(sessionID)
	}

	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	ok := func(snap domain.Snapshot) {
		send <- outboundMessage[any]{Type: "session", Payload: snap}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "createSession":
			var payload createSessionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.CreateSession(r.Context(), payload.QuizID, payload.TeamNames, payload.TimerSeconds)
			if err != nil {
				fail(err)
				continue
			}
			attach(snap.ID)
			ok(snap)
		case "getSession":
			var payload sessionRefPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.GetSession(r.Context(), payload.SessionID)
			if err != nil {
				fail(err)
				continue
			}
			attach(snap.ID)
			ok(snap)
		case "startQuestion":
			var payload startQuestionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.StartQuestion(r.Context(), payload.SessionID, payload.QuestionID)
			if err != nil {
				fail(err)
				continue
			}
			ok(snap)
		case "resolveQuestion":
			var payload resolveQuestionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.ResolveQuestion(r.Context(), payload.SessionID, payload.QuestionID, domain.Resolution{
				TeamID:  payload.TeamID,
				Outcome: payload.Outcome,
				Steal:   payload.Steal,
			})
			if err != nil {
				fail(err)
				continue
			}
			ok(snap)
		case "setTurn":
			var payload setTurnPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.SetActiveTurn(r.Context(), payload.SessionID, payload.TeamIndex)
			if err != nil {
				fail(err)
				continue
			}
			ok(snap)
		case "endGame":
			var payload sessionRefPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			snap, err := h.service.EndGame(r.Context(), payload.SessionID)
			if err != nil {
				fail(err)
				continue
			}
			ok(snap)
		case "reset":
			var payload sessionRefPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errInvalidPayload)
				continue
			}
			if cancelUpdates != nil {
				cancelUpdates()
				cancelUpdates = nil
			}
			h.service.ResetSession(r.Context(), payload.SessionID)
			send <- outboundMessage[any]{Type: "reset", Payload: resetAckPayload{SessionID: payload.SessionID, Phase: domain.PhaseSetup}}
		default:
			fail(errUnsupportedType)
		}
	}

	if cancelUpdates != nil {
		cancelUpdates()
	}
	close(closeSignals)
	pumps.Wait()
	close(send)
	<-writerDone
}
