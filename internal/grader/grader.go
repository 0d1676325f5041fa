// Package grader scores a submitted quiz.
package grader

import (
	"math"

	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
)

// Review is a question answered incorrectly, for display after grading.
type Review struct {
	Question question.Question
	// UserAnswer is nil when the question was left unanswered
	UserAnswer *string
}

// Result is the grade of one submission.
type Result struct {
	Score    int
	Total    int
	Outcomes []ledger.Outcome
	Wrong    []Review
}

// Percent is the rounded percentage score.
func (r Result) Percent() int {
	return Percent(r.Score, r.Total)
}

// Grade compares answers against the sampled questions. A question without an
// entry in answers is unanswered and always incorrect. Outcomes and Wrong
// follow the order of sampled.
func Grade(sampled []question.Question, answers map[string]string) Result {
	result := Result{
		Total:    len(sampled),
		Outcomes: make([]ledger.Outcome, 0, len(sampled)),
		Wrong:    []Review{},
	}

	for _, q := range sampled {
		var userAnswer *string
		if answer, ok := answers[q.ID]; ok {
			userAnswer = &answer
		}
		correct := userAnswer != nil && *userAnswer == q.Answer

		result.Outcomes = append(result.Outcomes, ledger.Outcome{
			QuestionID:    q.ID,
			IsCorrect:     correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.Answer,
		})
		if correct {
			result.Score++
			continue
		}
		result.Wrong = append(result.Wrong, Review{Question: q, UserAnswer: userAnswer})
	}
	return result
}

// Percent returns round(score / total * 100), rounding halves away from zero.
// Only a non-empty quiz is graded, so total is never 0 on that path.
func Percent(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
