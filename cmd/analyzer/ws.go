package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"negamax-chess/board"
	"negamax-chess/engine"
)

const wsIdlePingInterval = 30 * time.Second

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type rootPayload struct {
	Index int     `json:"index"`
	Move  string  `json:"move"`
	SAN   string  `json:"san"`
	Score float64 `json:"score"`
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

// serveAnalyzeWS answers each {"type":"analyze"} request with one "root"
// message per scored root move followed by a "result" or "error" message.
// Requests on one connection are handled in order.
func (s *server) serveAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	send := make(chan []byte, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, send); err != nil {
			s.logger.Debug().Err(err).Msg("analyze socket write")
		}
	}()
	defer func() {
		close(send)
		<-writerDone
	}()

	emit := func(msg wsMessage) {
		data, err := json.Marshal(msg)
		if err != nil {
			return
		}
		select {
		case send <- data:
		case <-writerDone:
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			emit(errorMessage(errInvalidPayload))
			continue
		}
		switch msg.Type {
		case "ping":
			emit(wsMessage{Type: "pong"})
		case "analyze":
			s.analyze(r.Context(), msg.Payload, emit)
		default:
			emit(wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": "unknown message type " + msg.Type})})
		}
	}
}

func (s *server) analyze(ctx context.Context, payload json.RawMessage, emit func(wsMessage)) {
	var req positionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		emit(errorMessage(errInvalidPayload))
		return
	}
	req, pos, err := s.resolve(req)
	if err != nil {
		emit(errorMessage(err))
		return
	}
	fen := pos.FEN()
	ctx, cancel := s.searchContext(ctx)
	defer cancel()
	res, err := s.engine.Analyze(ctx, pos, req.Depth, func(rs engine.RootScore) {
		uci := board.MoveString(rs.Move)
		emit(wsMessage{Type: "root", Payload: mustMarshal(rootPayload{
			Index: rs.Index,
			Move:  uci,
			SAN:   san(fen, uci),
			Score: rs.Score,
		})})
	})
	if err != nil {
		emit(errorMessage(err))
		return
	}
	uci := board.MoveString(res.Move)
	emit(wsMessage{Type: "result", Payload: mustMarshal(bestMoveResponse{
		Move:      uci,
		SAN:       san(fen, uci),
		Score:     res.Score,
		Nodes:     res.Nodes,
		Evals:     res.Evaluations,
		Partial:   res.Partial,
		ElapsedMs: res.Elapsed.Milliseconds(),
	})})
}

func errorMessage(err error) wsMessage {
	return wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": err.Error()})}
}
