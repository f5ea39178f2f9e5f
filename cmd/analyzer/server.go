package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"negamax-chess/board"
	"negamax-chess/engine"
	"negamax-chess/eval"
)

type server struct {
	engine *engine.Engine
	depth  int
	// maxDepth bounds request depths; the search cannot be interrupted
	// inside a root move.
	maxDepth int
	budget   time.Duration
	logger   zerolog.Logger
}

type positionRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
}

type bestMoveResponse struct {
	Move      string  `json:"move"`
	SAN       string  `json:"san"`
	Score     float64 `json:"score"`
	Nodes     int     `json:"nodes"`
	Evals     int     `json:"evals"`
	Partial   bool    `json:"partial"`
	Book      bool    `json:"book"`
	ElapsedMs int64   `json:"elapsed_ms"`
}

type evaluateResponse struct {
	Score    float64 `json:"score"`
	Favoured string  `json:"favoured"`
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/bestmove", s.handleBestMove)
	r.Post("/api/evaluate", s.handleEvaluate)
	r.Get("/ws/analyze", s.serveAnalyzeWS)
	return r
}

// decodePosition reads a positionRequest. An empty FEN means the start
// position and a zero depth means the configured one.
func (s *server) decodePosition(r *http.Request) (positionRequest, *board.Position, error) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, nil, errInvalidPayload
	}
	return s.resolve(req)
}

var errInvalidPayload = errors.New("invalid payload")

func (s *server) resolve(req positionRequest) (positionRequest, *board.Position, error) {
	if req.Depth == 0 {
		req.Depth = s.depth
	}
	if req.Depth < 1 || req.Depth > s.maxDepth {
		return req, nil, fmt.Errorf("depth %d outside 1..%d: %w", req.Depth, s.maxDepth, engine.ErrDepthOutOfRange)
	}
	if req.FEN == "" {
		return req, board.StartPosition(), nil
	}
	pos, err := board.ParseFEN(req.FEN)
	return req, pos, err
}

// searchContext applies the per-request time budget.
func (s *server) searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.budget > 0 {
		return context.WithTimeout(parent, s.budget)
	}
	return context.WithCancel(parent)
}

func (s *server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	req, pos, err := s.decodePosition(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := s.searchContext(r.Context())
	defer cancel()
	res, err := s.engine.Play(ctx, pos, req.Depth)
	if err != nil {
		s.logger.Warn().Err(err).Str("fen", pos.FEN()).Msg("bestmove failed")
		writeError(w, err)
		return
	}
	uci := board.MoveString(res.Move)
	writeJSON(w, http.StatusOK, bestMoveResponse{
		Move:      uci,
		SAN:       san(pos.FEN(), uci),
		Score:     res.Score,
		Nodes:     res.Nodes,
		Evals:     res.Evaluations,
		Partial:   res.Partial,
		Book:      res.Book,
		ElapsedMs: res.Elapsed.Milliseconds(),
	})
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	_, pos, err := s.decodePosition(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ev := s.engine.Evaluator()
	score, err := ev.Evaluate(pos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Score: score, Favoured: ev.Favoured().String()})
}

// san renders uci in standard algebraic notation, or returns "" when the
// move does not decode.
func san(fen, uci string) string {
	opt, err := chess.FEN(fen)
	if err != nil {
		return ""
	}
	g := chess.NewGame(opt)
	m, err := chess.UCINotation{}.Decode(g.Position(), uci)
	if err != nil {
		return ""
	}
	return chess.AlgebraicNotation{}.Encode(g.Position(), m)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidPayload), errors.Is(err, board.ErrInvalidFEN), errors.Is(err, engine.ErrDepthOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoLegalMoves):
		return http.StatusUnprocessableEntity
	case errors.Is(err, eval.ErrEvaluatorUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
