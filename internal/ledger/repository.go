package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/quizdrill/internal/database"
)

// MaxUserIDLength bounds user ids to the narrowest user_id column across the schemas.
const MaxUserIDLength = 255

var (
	// ErrEmptyUser is returned when an operation is not scoped to a user.
	ErrEmptyUser = errors.New("user id is empty")
	// ErrUserIDTooLong is returned for user ids a schema could not store intact.
	ErrUserIDTooLong = fmt.Errorf("user id is longer than %d bytes", MaxUserIDLength)
)

func checkUserID(userID string) error {
	if userID == "" {
		return ErrEmptyUser
	}
	if len(userID) > MaxUserIDLength {
		return ErrUserIDTooLong
	}
	return nil
}

//go:generate mockgen -source=repository.go -destination=../mocks/ledger/mock_repository.go -package=mock_ledger Repository

// Repository defines the per-user operations of the attempts ledger.
type Repository interface {
	// Init creates the attempts table if it does not exist. It never drops data.
	Init(ctx context.Context) error
	// Load returns every attempt of the user, or an empty snapshot.
	Load(ctx context.Context, userID string) (Snapshot, error)
	// SaveBatch upserts all outcomes atomically. Empty input is a no-op.
	SaveBatch(ctx context.Context, userID string, outcomes []Outcome) error
	// Reset deletes every attempt of the user.
	Reset(ctx context.Context, userID string) error
}

const table = "attempts"

var (
	conflictColumns = []string{"user_id", "qid"}
	updateColumns   = []string{"is_correct", "last_answer", "correct_answer"}
	insertColumns   = append(append([]string{}, conflictColumns...), updateColumns...)
)

// DBRepository implements Repository on any SQL dialect of the database package.
type DBRepository struct {
	db      *sqlx.DB
	dialect database.Dialect

	mu    sync.Mutex
	ready bool
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB, dialect database.Dialect) *DBRepository {
	return &DBRepository{db: db, dialect: dialect}
}

// Init runs the dialect's DDL. Once it succeeded, later calls are no-ops.
func (r *DBRepository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready {
		return nil
	}

	schema, err := database.Schema(r.dialect)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create attempts table: %w", err)
	}
	r.ready = true
	return nil
}

type attemptRow struct {
	QuestionID    string             `db:"qid"`
	IsCorrect     int                `db:"is_correct"`
	LastAnswer    sql.NullString     `db:"last_answer"`
	CorrectAnswer sql.NullString     `db:"correct_answer"`
	UpdatedAt     database.Timestamp `db:"updated_at"`
}

// Load returns the snapshot of the user's attempts.
func (r *DBRepository) Load(ctx context.Context, userID string) (Snapshot, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if err := r.Init(ctx); err != nil {
		return nil, err
	}

	var rows []attemptRow
	query := r.db.Rebind("SELECT qid, is_correct, last_answer, correct_answer, updated_at FROM attempts WHERE user_id = ?")
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("load attempts: %w", err)
	}

	snapshot := make(Snapshot, len(rows))
	for _, row := range rows {
		attempt := Attempt{
			QuestionID:    row.QuestionID,
			IsCorrect:     row.IsCorrect != 0,
			CorrectAnswer: row.CorrectAnswer.String,
			UpdatedAt:     row.UpdatedAt.Time,
		}
		if row.LastAnswer.Valid {
			answer := row.LastAnswer.String
			attempt.LastAnswer = &answer
		}
		snapshot[row.QuestionID] = attempt
	}
	return snapshot, nil
}

// SaveBatch upserts the outcomes with a single multi-row statement in one transaction.
// A question repeated in the batch is written once with its last outcome.
func (r *DBRepository) SaveBatch(ctx context.Context, userID string, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	if err := checkUserID(userID); err != nil {
		return err
	}
	if err := r.Init(ctx); err != nil {
		return err
	}

	outcomes = lastPerQuestion(outcomes)
	query := database.BuildMultiRowInsert(table, insertColumns, len(outcomes)) +
		r.dialect.Upsert(conflictColumns, updateColumns, "updated_at")
	query = r.db.Rebind(query)

	args := make([]interface{}, 0, len(outcomes)*len(insertColumns))
	for _, o := range outcomes {
		var lastAnswer sql.NullString
		if o.UserAnswer != nil {
			lastAnswer = sql.NullString{String: *o.UserAnswer, Valid: true}
		}
		args = append(args, userID, o.QuestionID, boolToInt(o.IsCorrect), lastAnswer, o.CorrectAnswer)
	}

	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert attempts: %w", err)
		}
		return nil
	})
}

// Reset deletes every attempt of the user.
func (r *DBRepository) Reset(ctx context.Context, userID string) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	if err := r.Init(ctx); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM attempts WHERE user_id = ?"), userID); err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	return nil
}

// lastPerQuestion keeps the last outcome of every question, in first-seen order.
// PostgreSQL rejects a statement that updates the same row twice.
func lastPerQuestion(outcomes []Outcome) []Outcome {
	index := make(map[string]int, len(outcomes))
	result := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if i, ok := index[o.QuestionID]; ok {
			result[i] = o
			continue
		}
		index[o.QuestionID] = len(result)
		result = append(result, o)
	}
	return result
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
