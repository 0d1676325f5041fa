// Package selector draws random quizzes from the catalog under the drill filters.
package selector

import (
	"math/rand/v2"

	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
)

// Filter narrows the pool a quiz is drawn from.
// WrongOnly takes precedence over AvoidSeen.
type Filter struct {
	AvoidSeen bool
	WrongOnly bool
}

// Status tells why a pick came back empty. It is informational, not an error.
type Status int

const (
	StatusOK Status = iota
	StatusWrongPoolEmpty
	StatusAllAttempted
	StatusCatalogEmpty
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWrongPoolEmpty:
		return "wrong_pool_empty"
	case StatusAllAttempted:
		return "all_attempted"
	case StatusCatalogEmpty:
		return "catalog_empty"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user for an empty pool.
func (s Status) Message() string {
	switch s {
	case StatusWrongPoolEmpty:
		return "No wrong answers to review. Every attempted question was answered correctly."
	case StatusAllAttempted:
		return "All questions have been attempted. Reset progress or include seen questions."
	case StatusCatalogEmpty:
		return "The question bank has no valid questions."
	default:
		return ""
	}
}

// Result is the outcome of one pick.
type Result struct {
	Questions []question.Question
	Status    Status
}

// Selector samples questions. The zero value uses the global random source.
type Selector struct {
	rng *rand.Rand
}

// New returns a Selector drawing from rng. A nil rng uses the global source.
func New(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// Pick draws up to n distinct questions uniformly at random from the pool the
// filter selects. n larger than the pool is clamped; n <= 0 yields an empty
// result with StatusOK.
func (s *Selector) Pick(catalog []question.Question, snapshot ledger.Snapshot, n int, filter Filter) Result {
	pool, emptyStatus := candidates(catalog, snapshot, filter)
	if len(pool) == 0 {
		return Result{Questions: []question.Question{}, Status: emptyStatus}
	}
	if n <= 0 {
		return Result{Questions: []question.Question{}, Status: StatusOK}
	}
	n = min(n, len(pool))

	// Partial Fisher-Yates over a copy; the catalog is shared and must not be reordered
	sample := make([]question.Question, len(pool))
	copy(sample, pool)
	for i := 0; i < n; i++ {
		j := i + s.intN(len(sample)-i)
		sample[i], sample[j] = sample[j], sample[i]
	}
	return Result{Questions: sample[:n:n], Status: StatusOK}
}

// Pick draws with the global random source.
func Pick(catalog []question.Question, snapshot ledger.Snapshot, n int, filter Filter) Result {
	return (&Selector{}).Pick(catalog, snapshot, n, filter)
}

func (s *Selector) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	return s.rng.IntN(n)
}

func candidates(catalog []question.Question, snapshot ledger.Snapshot, filter Filter) ([]question.Question, Status) {
	switch {
	case filter.WrongOnly:
		return filterQuestions(catalog, snapshot.Wrong), StatusWrongPoolEmpty
	case filter.AvoidSeen:
		return filterQuestions(catalog, func(id string) bool {
			return !snapshot.Seen(id)
		}), StatusAllAttempted
	default:
		return catalog, StatusCatalogEmpty
	}
}

func filterQuestions(catalog []question.Question, keep func(id string) bool) []question.Question {
	var pool []question.Question
	for _, q := range catalog {
		if keep(q.ID) {
			pool = append(pool, q)
		}
	}
	return pool
}
