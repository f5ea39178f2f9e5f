package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"negamax-chess/encoder"
)

// ServingScorer asks a model server speaking the TensorFlow Serving REST
// predict API for a score.
type ServingScorer struct {
	URL    string // base URL, e.g. http://localhost:8501
	Model  string
	Client *http.Client
}

var _ Scorer = (*ServingScorer)(nil)

func NewServingScorer(url, model string, timeout time.Duration) *ServingScorer {
	return &ServingScorer{
		URL:    strings.TrimRight(url, "/"),
		Model:  model,
		Client: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Instances []*encoder.Tensor `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

func (s *ServingScorer) endpoint() string {
	return fmt.Sprintf("%s/v1/models/%s:predict", s.URL, s.Model)
}

func (s *ServingScorer) Score(t *encoder.Tensor) (float64, error) {
	body, err := json.Marshal(predictRequest{Instances: []*encoder.Tensor{t}})
	if err != nil {
		return 0, fmt.Errorf("encode predict request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(s.endpoint(), "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("predict %s: %w", s.Model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read predict response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predict %s: status %d: %s", s.Model, resp.StatusCode, bytes.TrimSpace(data))
	}
	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode predict response: %w", err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("predict %s: %s", s.Model, out.Error)
	}
	if len(out.Predictions) != 1 || len(out.Predictions[0]) != 1 {
		return 0, fmt.Errorf("predict %s: want one scalar prediction, got %v", s.Model, out.Predictions)
	}
	return out.Predictions[0][0], nil
}
