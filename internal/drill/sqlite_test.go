package drill

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/at-ishikawa/quizdrill/internal/config"
	"github.com/at-ishikawa/quizdrill/internal/database"
	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
	"github.com/at-ishikawa/quizdrill/internal/selector"
)

func TestService_SQLite_Round(t *testing.T) {
	db, _, err := database.Open(config.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "quiz.db")})
	require.NoError(t, err)
	defer db.Close()

	service := NewService(
		fakeSource{bank: question.NewBank(testQuestions, nil)},
		ledger.NewDBRepository(db.DB, db.Dialect),
		nil,
		zap.NewNop(),
	)
	ctx := userContext()

	first, err := service.Pick(ctx, 10, selector.Filter{AvoidSeen: true})
	require.NoError(t, err)
	require.Len(t, first.Questions, 3)

	result, err := service.Submit(ctx, []string{"Q0001", "Q0002"}, map[string]string{"Q0001": "A", "Q0002": "C"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)

	unseen, err := service.Pick(ctx, 10, selector.Filter{AvoidSeen: true})
	require.NoError(t, err)
	require.Len(t, unseen.Questions, 1)
	assert.Equal(t, "Q0003", unseen.Questions[0].ID)

	wrong, err := service.Pick(ctx, 10, selector.Filter{WrongOnly: true})
	require.NoError(t, err)
	require.Len(t, wrong.Questions, 1)
	assert.Equal(t, "Q0002", wrong.Questions[0].ID)

	// Answering the wrong question correctly empties the wrong pool
	_, err = service.Submit(ctx, []string{"Q0002"}, map[string]string{"Q0002": "D"})
	require.NoError(t, err)
	wrong, err = service.Pick(ctx, 10, selector.Filter{WrongOnly: true})
	require.NoError(t, err)
	assert.Empty(t, wrong.Questions)
	assert.Equal(t, selector.StatusWrongPoolEmpty, wrong.Status)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 2, stats.Correct)

	require.NoError(t, service.Reset(ctx))

	stats, err = service.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Attempted)

	afterReset, err := service.Pick(ctx, 10, selector.Filter{AvoidSeen: true})
	require.NoError(t, err)
	assert.Len(t, afterReset.Questions, 3)
}
