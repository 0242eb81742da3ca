// Package testutils holds fakes shared by the pipeline, service and
// transport tests.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/triage/internal/pipeline"
	"github.com/aretw0/triage/pkg/domain"
)

// Reply is one scripted reasoner answer.
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration
}

// Reasoner answers each stage from a script. The last reply of a stage
// repeats once the script is exhausted.
type Reasoner struct {
	mu      sync.Mutex
	script  map[domain.Stage][]Reply
	calls   map[domain.Stage]int
	inputs  map[domain.Stage][]string
	stageOf map[string]domain.Stage
}

// NewReasoner creates a reasoner with the replies given per stage.
func NewReasoner(script map[domain.Stage][]Reply) *Reasoner {
	r := &Reasoner{
		script:  script,
		calls:   make(map[domain.Stage]int),
		inputs:  make(map[domain.Stage][]string),
		stageOf: make(map[string]domain.Stage),
	}
	for _, st := range []domain.Stage{domain.StageExtracting, domain.StageClassifying, domain.StageRouting} {
		r.stageOf[pipeline.Instruction(st)] = st
	}
	return r
}

// Canned returns a reasoner that always gives the same text per stage.
func Canned(extraction, classification, routing string) *Reasoner {
	return NewReasoner(map[domain.Stage][]Reply{
		domain.StageExtracting:  {{Text: extraction}},
		domain.StageClassifying: {{Text: classification}},
		domain.StageRouting:     {{Text: routing}},
	})
}

// Complete implements ports.Reasoner.
func (r *Reasoner) Complete(ctx context.Context, instruction, input string) (string, error) {
	r.mu.Lock()
	stage, ok := r.stageOf[instruction]
	if !ok {
		r.mu.Unlock()
		return "", fmt.Errorf("unexpected instruction")
	}
	n := r.calls[stage]
	r.calls[stage]++
	r.inputs[stage] = append(r.inputs[stage], input)
	replies := r.script[stage]
	r.mu.Unlock()

	if len(replies) == 0 {
		return "", fmt.Errorf("no scripted reply for %s", stage)
	}
	if n >= len(replies) {
		n = len(replies) - 1
	}
	reply := replies[n]

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply.Text, reply.Err
}

// Calls returns how many times stage was invoked.
func (r *Reasoner) Calls(stage domain.Stage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[stage]
}

// Inputs returns the inputs sent for stage, in call order.
func (r *Reasoner) Inputs(stage domain.Stage) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs[stage]...)
}
