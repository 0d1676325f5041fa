// Package server exposes the drill over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/config"
	"github.com/at-ishikawa/quizdrill/internal/grader"
	"github.com/at-ishikawa/quizdrill/internal/question"
	"github.com/at-ishikawa/quizdrill/internal/selector"
	"github.com/at-ishikawa/quizdrill/internal/statistics"
)

// Drill is the drill service the handlers call.
type Drill interface {
	Catalog(ctx context.Context) (*question.Bank, error)
	Stats(ctx context.Context) (statistics.Progress, error)
	History(ctx context.Context, year, month int) ([]statistics.PeriodStatistics, error)
	Pick(ctx context.Context, n int, filter selector.Filter) (selector.Result, error)
	Submit(ctx context.Context, questionIDs []string, answers map[string]string) (grader.Result, error)
	Reset(ctx context.Context) error
}

// QuizHandler implements the quiz endpoints.
type QuizHandler struct {
	drill   Drill
	quiz    config.QuizConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(drill Drill, quiz config.QuizConfig, metrics *Metrics, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		drill:   drill,
		quiz:    quiz,
		metrics: metrics,
		logger:  logger,
	}
}

type questionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"question"`
	Choices []string `json:"choices"`
}

type startQuizRequest struct {
	// Count defaults to the configured count when omitted
	Count int `json:"count" binding:"gte=0"`
	// AvoidSeen defaults to true when omitted
	AvoidSeen *bool `json:"avoid_seen"`
	WrongOnly bool  `json:"wrong_only"`
}

type startQuizResponse struct {
	Questions []questionResponse `json:"questions"`
	Status    string             `json:"status"`
	Message   string             `json:"message,omitempty"`
}

type submitQuizRequest struct {
	QuestionIDs []string          `json:"question_ids" binding:"required,min=1"`
	Answers     map[string]string `json:"answers"`
}

type outcomeResponse struct {
	ID            string  `json:"id"`
	Correct       bool    `json:"correct"`
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
}

type reviewResponse struct {
	ID            string  `json:"id"`
	Text          string  `json:"question"`
	UserAnswer    *string `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation,omitempty"`
}

type submitQuizResponse struct {
	Score    int               `json:"score"`
	Total    int               `json:"total"`
	Percent  int               `json:"percent"`
	Outcomes []outcomeResponse `json:"outcomes"`
	Wrong    []reviewResponse  `json:"wrong"`
}

type statsResponse struct {
	Total      int     `json:"total"`
	Attempted  int     `json:"attempted"`
	Correct    int     `json:"correct"`
	Wrong      int     `json:"wrong"`
	Accuracy   float64 `json:"accuracy"`
	Completion float64 `json:"completion"`
}

type historyRequest struct {
	Year  int `form:"year" binding:"gte=0"`
	Month int `form:"month" binding:"gte=0,lte=12"`
}

type periodResponse struct {
	Period  string `json:"period"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
}

// StartQuiz handles POST /api/quizzes.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	var req startQuizRequest
	// An empty body starts a quiz with the defaults
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	count := req.Count
	if count == 0 {
		count = h.quiz.DefaultCount
	}
	if count > h.quiz.MaxCount {
		respondError(c, http.StatusBadRequest, "invalid_request",
			fmt.Errorf("count must be at most %d", h.quiz.MaxCount))
		return
	}
	filter := selector.Filter{AvoidSeen: true, WrongOnly: req.WrongOnly}
	if req.AvoidSeen != nil {
		filter.AvoidSeen = *req.AvoidSeen
	}

	result, err := h.drill.Pick(c.Request.Context(), count, filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	questions := make([]questionResponse, 0, len(result.Questions))
	for _, q := range result.Questions {
		questions = append(questions, questionResponse{ID: q.ID, Text: q.Text, Choices: q.Choices})
	}
	c.JSON(http.StatusOK, startQuizResponse{
		Questions: questions,
		Status:    result.Status.String(),
		Message:   result.Status.Message(),
	})
}

// SubmitQuiz handles POST /api/quizzes/submit.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.drill.Submit(c.Request.Context(), req.QuestionIDs, req.Answers)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.ObserveGrade(result)

	res := submitQuizResponse{
		Score:    result.Score,
		Total:    result.Total,
		Percent:  result.Percent(),
		Outcomes: make([]outcomeResponse, 0, len(result.Outcomes)),
		Wrong:    make([]reviewResponse, 0, len(result.Wrong)),
	}
	for _, o := range result.Outcomes {
		res.Outcomes = append(res.Outcomes, outcomeResponse{
			ID:            o.QuestionID,
			Correct:       o.IsCorrect,
			UserAnswer:    o.UserAnswer,
			CorrectAnswer: o.CorrectAnswer,
		})
	}
	for _, w := range result.Wrong {
		res.Wrong = append(res.Wrong, reviewResponse{
			ID:            w.Question.ID,
			Text:          w.Question.Text,
			UserAnswer:    w.UserAnswer,
			CorrectAnswer: w.Question.Answer,
			Explanation:   w.Question.Explanation,
		})
	}
	c.JSON(http.StatusOK, res)
}

// GetStats handles GET /api/stats.
func (h *QuizHandler) GetStats(c *gin.Context) {
	progress, err := h.drill.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		Total:      progress.Total,
		Attempted:  progress.Attempted,
		Correct:    progress.Correct,
		Wrong:      progress.Wrong,
		Accuracy:   progress.Accuracy(),
		Completion: progress.Completion(),
	})
}

// GetHistory handles GET /api/stats/history.
func (h *QuizHandler) GetHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	periods, err := h.drill.History(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.fail(c, err)
		return
	}
	res := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		res = append(res, periodResponse{Period: p.Period, Correct: p.Correct, Wrong: p.Wrong})
	}
	c.JSON(http.StatusOK, gin.H{"periods": res})
}

// ResetProgress handles DELETE /api/progress.
func (h *QuizHandler) ResetProgress(c *gin.Context) {
	if err := h.drill.Reset(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health handles GET /healthz. It fails while no catalog can be loaded.
func (h *QuizHandler) Health(c *gin.Context) {
	bank, err := h.drill.Catalog(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "questions": len(bank.Questions)})
}

func (h *QuizHandler) fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	if status == http.StatusInternalServerError {
		err = errors.New("internal error")
	}
	respondError(c, status, code, err)
}
