package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/book"
	"negamax-chess/encoder"
	"negamax-chess/engine"
	"negamax-chess/eval"
)

const mateInOne = "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1"

func newTestServer(t *testing.T, ev eval.Evaluator) *httptest.Server {
	t.Helper()
	s := &server{
		engine:   engine.New(ev, engine.WithBook(book.Default())),
		depth:    2,
		maxDepth: 3,
		logger:   zerolog.Nop(),
	}
	ts := httptest.NewServer(newRouter(s))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestPing(t *testing.T) {
	ts := newTestServer(t, eval.NewHeuristic(board.Black))
	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var got map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil || !got["ok"] {
		t.Fatalf("ping: %v %v", got, err)
	}
}

func TestBestMove(t *testing.T) {
	ts := newTestServer(t, eval.NewHeuristic(board.Black))
	var got bestMoveResponse
	if code := post(t, ts.URL+"/api/bestmove", `{"fen":"`+mateInOne+`","depth":2}`, &got); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if got.Move != "a1a8" || !strings.HasPrefix(got.SAN, "Ra8") {
		t.Fatalf("got %+v want a1a8 / Ra8#", got)
	}
	if got.Nodes == 0 || got.Book {
		t.Fatalf("expected a search, got %+v", got)
	}

	got = bestMoveResponse{}
	post(t, ts.URL+"/api/bestmove", `{"fen":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"}`, &got)
	if !got.Book || got.Move != "e7e5" || got.SAN != "e5" {
		t.Fatalf("expected the book reply e5, got %+v", got)
	}
}

func TestBestMoveErrors(t *testing.T) {
	ts := newTestServer(t, eval.NewHeuristic(board.Black))
	cases := []struct {
		body string
		want int
	}{
		{`{"fen":`, http.StatusBadRequest},
		{`{"fen":"not a fen"}`, http.StatusBadRequest},
		{`{"depth":99}`, http.StatusBadRequest},
		{`{"depth":4}`, http.StatusBadRequest},
		{`{"depth":-1}`, http.StatusBadRequest},
		{`{"fen":"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		var got map[string]string
		if code := post(t, ts.URL+"/api/bestmove", tc.body, &got); code != tc.want {
			t.Fatalf("%s: status %d want %d", tc.body, code, tc.want)
		}
		if got["error"] == "" {
			t.Fatalf("%s: no error message", tc.body)
		}
	}
}

func TestEvaluate(t *testing.T) {
	ts := newTestServer(t, eval.NewHeuristic(board.Black))
	var got evaluateResponse
	if code := post(t, ts.URL+"/api/evaluate", `{"fen":"4k3/8/8/8/8/8/3P4/4K3 w - - 0 10"}`, &got); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if got.Score != -105 || got.Favoured != "black" {
		t.Fatalf("got %+v want -105 favouring black", got)
	}

	broken := eval.NewLearned(eval.ScorerFunc(func(*encoder.Tensor) (float64, error) {
		return 0, errors.New("no model")
	}), board.Black)
	ts = newTestServer(t, broken)
	if code := post(t, ts.URL+"/api/evaluate", `{}`, nil); code != http.StatusBadGateway {
		t.Fatalf("broken evaluator: status %d want %d", code, http.StatusBadGateway)
	}
}

func TestAnalyzeSocketStreamsRootMoves(t *testing.T) {
	ts := newTestServer(t, eval.NewHeuristic(board.Black))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/analyze", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := wsMessage{Type: "analyze", Payload: mustMarshal(positionRequest{FEN: board.StartFEN, Depth: 1})}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	roots := 0
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "root" {
			roots++
			continue
		}
		if msg.Type != "result" {
			t.Fatalf("unexpected message %s %s", msg.Type, msg.Payload)
		}
		var res bestMoveResponse
		if err := json.Unmarshal(msg.Payload, &res); err != nil || res.Move == "" {
			t.Fatalf("bad result %s: %v", msg.Payload, err)
		}
		break
	}
	if roots != 20 {
		t.Fatalf("got %d root messages want 20", roots)
	}

	if err := conn.WriteJSON(wsMessage{Type: "analyze", Payload: mustMarshal(positionRequest{FEN: "bad"})}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "error" {
		t.Fatalf("expected an error message, got %s %v", msg.Type, err)
	}

	if err := conn.WriteJSON(wsMessage{Type: "analyze", Payload: mustMarshal(positionRequest{Depth: 4})}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg = wsMessage{}
	if err := conn.ReadJSON(&msg); err != nil || msg.Type != "error" {
		t.Fatalf("expected a depth error, got %s %s %v", msg.Type, msg.Payload, err)
	}
	if !strings.Contains(string(msg.Payload), "depth 4") {
		t.Fatalf("unexpected error payload %s", msg.Payload)
	}
}
