package services

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Result is the outcome contract of a challenge evaluation. Score is 0 or 100
// under the mock evaluator; a real grading engine may use the full range.
type Result struct {
	Passed bool     `json:"passed"`
	Output string   `json:"output"`
	Score  int      `json:"score"`
	Errors []string `json:"errors"`
}

// Evaluator grades submitted code against a challenge. Implementations must
// honor ctx so a slow or hostile submission cannot stall callers.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, challengeID uint) Result
}

// MockEvaluator is a stand-in for a real grading engine. It ignores the code
// entirely and passes with probability 0.7. Callers depend on the Evaluator
// interface so a sandboxed engine can be substituted without touching them.
type MockEvaluator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (e *MockEvaluator) Evaluate(ctx context.Context, code string, challengeID uint) Result {
	e.mu.Lock()
	passed := e.rng.Float64() > 0.3
	e.mu.Unlock()

	if passed {
		return Result{
			Passed: true,
			Output: "Challenge completed!",
			Score:  100,
			Errors: []string{},
		}
	}
	return Result{
		Passed: false,
		Output: "Some test cases failed",
		Score:  0,
		Errors: []string{"Test case 1 failed", "Test case 3 failed"},
	}
}
