// Package ledger stores the latest outcome of every (user, question) pair.
package ledger

import "time"

// Attempt is the latest recorded outcome of one question for one user.
type Attempt struct {
	QuestionID string
	IsCorrect  bool
	// LastAnswer is nil when the question was submitted unanswered
	LastAnswer    *string
	CorrectAnswer string
	UpdatedAt     time.Time
}

// Snapshot maps question ids to a user's latest attempts.
type Snapshot map[string]Attempt

// Seen reports whether the user has any recorded outcome for the question.
func (s Snapshot) Seen(questionID string) bool {
	_, ok := s[questionID]
	return ok
}

// Wrong reports whether the latest outcome of the question was incorrect.
func (s Snapshot) Wrong(questionID string) bool {
	a, ok := s[questionID]
	return ok && !a.IsCorrect
}

// Outcome is one graded submission to record.
type Outcome struct {
	QuestionID string
	IsCorrect  bool
	// UserAnswer is nil when the question was left unanswered
	UserAnswer    *string
	CorrectAnswer string
}
