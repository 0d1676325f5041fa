// Package drill runs quiz rounds for the session user: pick, grade, record.
package drill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/grader"
	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
	"github.com/at-ishikawa/quizdrill/internal/selector"
	"github.com/at-ishikawa/quizdrill/internal/session"
	"github.com/at-ishikawa/quizdrill/internal/statistics"
)

var (
	// ErrUnknownQuestion is returned when a submission names a question not in the catalog.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrEmptySubmission is returned when a submission names no question.
	ErrEmptySubmission = errors.New("no questions submitted")
)

// Service is the drill for the user carried by each call's context.
type Service struct {
	source   question.Source
	repo     ledger.Repository
	selector *selector.Selector
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(source question.Source, repo ledger.Repository, sel *selector.Selector, logger *zap.Logger) *Service {
	if sel == nil {
		sel = selector.New(nil)
	}
	return &Service{
		source:   source,
		repo:     repo,
		selector: sel,
		logger:   logger,
	}
}

// Catalog returns the loaded bank. A bank without any valid question is ErrNoData.
func (s *Service) Catalog(ctx context.Context) (*question.Bank, error) {
	bank, err := s.source.Bank()
	if err != nil {
		return nil, err
	}
	if len(bank.Questions) == 0 {
		return nil, fmt.Errorf("%w: every record was skipped", question.ErrNoData)
	}
	return bank, nil
}

// Stats returns the progress of the session user.
func (s *Service) Stats(ctx context.Context) (statistics.Progress, error) {
	bank, snapshot, err := s.load(ctx)
	if err != nil {
		return statistics.Progress{}, err
	}
	return statistics.Calculate(len(bank.Questions), snapshot), nil
}

// History returns the session user's latest outcomes grouped by month.
func (s *Service) History(ctx context.Context, year, month int) ([]statistics.PeriodStatistics, error) {
	userID, err := session.UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo.Load() > %w", err)
	}
	return statistics.ByPeriod(snapshot, year, month), nil
}

// Pick draws a new quiz for the session user.
func (s *Service) Pick(ctx context.Context, n int, filter selector.Filter) (selector.Result, error) {
	bank, snapshot, err := s.load(ctx)
	if err != nil {
		return selector.Result{}, err
	}

	result := s.selector.Pick(bank.Questions, snapshot, n, filter)
	s.logger.Debug("quiz picked",
		zap.Int("requested", n),
		zap.Int("picked", len(result.Questions)),
		zap.Bool("avoid_seen", filter.AvoidSeen),
		zap.Bool("wrong_only", filter.WrongOnly),
		zap.Stringer("status", result.Status),
	)
	return result, nil
}

// Submit grades answers to the questions in questionIDs, in that order, and
// records every outcome in one batch. A question without an answer is unanswered.
func (s *Service) Submit(ctx context.Context, questionIDs []string, answers map[string]string) (grader.Result, error) {
	userID, err := session.UserFrom(ctx)
	if err != nil {
		return grader.Result{}, err
	}
	if len(questionIDs) == 0 {
		return grader.Result{}, ErrEmptySubmission
	}
	bank, err := s.Catalog(ctx)
	if err != nil {
		return grader.Result{}, err
	}

	sampled := make([]question.Question, 0, len(questionIDs))
	seen := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		q, ok := bank.Lookup(id)
		if !ok {
			return grader.Result{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
		}
		sampled = append(sampled, q)
	}

	result := grader.Grade(sampled, answers)
	if err := s.repo.SaveBatch(ctx, userID, result.Outcomes); err != nil {
		return grader.Result{}, fmt.Errorf("repo.SaveBatch() > %w", err)
	}
	s.logger.Info("quiz submitted",
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// Reset deletes every recorded outcome of the session user.
func (s *Service) Reset(ctx context.Context) error {
	userID, err := session.UserFrom(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Reset(ctx, userID); err != nil {
		return fmt.Errorf("repo.Reset() > %w", err)
	}
	s.logger.Info("progress reset")
	return nil
}

func (s *Service) load(ctx context.Context) (*question.Bank, ledger.Snapshot, error) {
	userID, err := session.UserFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	bank, err := s.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("repo.Load() > %w", err)
	}
	return bank, snapshot, nil
}
