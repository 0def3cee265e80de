// Package usage accumulates per-model token totals for the lifetime of the
// process. Nothing is persisted; counters reset on restart.
package usage

import (
	"sync"

	"github.com/lecternhq/lectern/pkg/llm"
)

// Totals is the aggregate for one model.
type Totals struct {
	Requests     int `json:"requests"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Accumulator is a concurrency-safe per-model usage ledger.
type Accumulator struct {
	mu     sync.Mutex
	models map[string]Totals
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{models: make(map[string]Totals)}
}

// Record folds one call's usage into the model's totals.
func (a *Accumulator) Record(modelID string, u llm.Usage) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t := a.models[modelID]
	t.Requests++
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	t.TotalTokens += u.TotalTokens
	a.models[modelID] = t
}

// Snapshot returns a copy of the current totals keyed by model id.
func (a *Accumulator) Snapshot() map[string]Totals {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := make(map[string]Totals, len(a.models))
	for model, totals := range a.models {
		snapshot[model] = totals
	}
	return snapshot
}
