package eval

import (
	"encoding/json"
	"fmt"
	"os"

	"negamax-chess/encoder"
)

// LinearScorer is a single dense layer over the flattened tensor.
type LinearScorer struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

var _ Scorer = (*LinearScorer)(nil)

// LoadLinearScorer reads a {"weights": [...], "bias": b} document. The weight
// count must match the tensor size.
func LoadLinearScorer(path string) (*LinearScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read linear weights: %w", err)
	}
	var s LinearScorer
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode linear weights %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *LinearScorer) validate() error {
	if len(s.Weights) != encoder.Size {
		return fmt.Errorf("linear scorer: got %d weights want %d", len(s.Weights), encoder.Size)
	}
	return nil
}

func (s *LinearScorer) Score(t *encoder.Tensor) (float64, error) {
	if err := s.validate(); err != nil {
		return 0, err
	}
	sum := s.Bias
	for i, v := range t.Flatten() {
		if v != 0 {
			sum += s.Weights[i] * float64(v)
		}
	}
	return sum, nil
}
