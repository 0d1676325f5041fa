package selector

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/quizdrill/internal/ledger"
	"github.com/at-ishikawa/quizdrill/internal/question"
)

func newCatalog(n int) []question.Question {
	catalog := make([]question.Question, 0, n)
	for i := 1; i <= n; i++ {
		catalog = append(catalog, question.Question{
			ID:      question.FormatID(int64(i)),
			Text:    "question",
			Choices: []string{"A", "B"},
			Answer:  "A",
		})
	}
	return catalog
}

func ids(questions []question.Question) []string {
	result := make([]string, 0, len(questions))
	for _, q := range questions {
		result = append(result, q.ID)
	}
	return result
}

func TestSelector_Pick(t *testing.T) {
	catalog := newCatalog(10)
	snapshot := ledger.Snapshot{
		"Q0001": {QuestionID: "Q0001", IsCorrect: true},
		"Q0002": {QuestionID: "Q0002", IsCorrect: false},
		"Q0003": {QuestionID: "Q0003", IsCorrect: false},
		"Q0004": {QuestionID: "Q0004", IsCorrect: true},
	}
	allCorrect := ledger.Snapshot{
		"Q0001": {QuestionID: "Q0001", IsCorrect: true},
	}
	allSeen := ledger.Snapshot{}
	for _, q := range catalog {
		allSeen[q.ID] = ledger.Attempt{QuestionID: q.ID, IsCorrect: false}
	}

	tests := []struct {
		name       string
		catalog    []question.Question
		snapshot   ledger.Snapshot
		n          int
		filter     Filter
		wantPool   []string
		wantCount  int
		wantStatus Status
	}{
		{
			name:       "entire catalog",
			catalog:    catalog,
			snapshot:   snapshot,
			n:          3,
			wantPool:   ids(catalog),
			wantCount:  3,
			wantStatus: StatusOK,
		},
		{
			name:       "wrong only",
			catalog:    catalog,
			snapshot:   snapshot,
			n:          10,
			filter:     Filter{WrongOnly: true},
			wantPool:   []string{"Q0002", "Q0003"},
			wantCount:  2,
			wantStatus: StatusOK,
		},
		{
			name:       "wrong only ignores avoid seen",
			catalog:    catalog,
			snapshot:   snapshot,
			n:          10,
			filter:     Filter{WrongOnly: true, AvoidSeen: true},
			wantPool:   []string{"Q0002", "Q0003"},
			wantCount:  2,
			wantStatus: StatusOK,
		},
		{
			name:       "avoid seen",
			catalog:    catalog,
			snapshot:   snapshot,
			n:          10,
			filter:     Filter{AvoidSeen: true},
			wantPool:   []string{"Q0005", "Q0006", "Q0007", "Q0008", "Q0009", "Q0010"},
			wantCount:  6,
			wantStatus: StatusOK,
		},
		{
			name:       "empty wrong pool",
			catalog:    catalog,
			snapshot:   allCorrect,
			n:          5,
			filter:     Filter{WrongOnly: true},
			wantStatus: StatusWrongPoolEmpty,
		},
		{
			name:       "empty wrong pool regardless of avoid seen",
			catalog:    catalog,
			snapshot:   ledger.Snapshot{},
			n:          5,
			filter:     Filter{WrongOnly: true, AvoidSeen: true},
			wantStatus: StatusWrongPoolEmpty,
		},
		{
			name:       "all attempted",
			catalog:    catalog,
			snapshot:   allSeen,
			n:          5,
			filter:     Filter{AvoidSeen: true},
			wantStatus: StatusAllAttempted,
		},
		{
			name:       "empty catalog",
			catalog:    nil,
			snapshot:   nil,
			n:          5,
			wantStatus: StatusCatalogEmpty,
		},
		{
			name:       "non-positive count",
			catalog:    catalog,
			snapshot:   snapshot,
			n:          0,
			wantStatus: StatusOK,
		},
		{
			name:       "nil snapshot treats every question as unseen",
			catalog:    catalog,
			snapshot:   nil,
			n:          20,
			filter:     Filter{AvoidSeen: true},
			wantPool:   ids(catalog),
			wantCount:  10,
			wantStatus: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(rand.New(rand.NewPCG(1, 2)))
			got := s.Pick(tt.catalog, tt.snapshot, tt.n, tt.filter)

			assert.Equal(t, tt.wantStatus, got.Status)
			require.NotNil(t, got.Questions)
			assert.Len(t, got.Questions, tt.wantCount)
			for _, id := range ids(got.Questions) {
				assert.Contains(t, tt.wantPool, id)
			}
		})
	}
}

func TestSelector_Pick_ClampsWithoutDuplicates(t *testing.T) {
	catalog := newCatalog(7)

	got := Pick(catalog, ledger.Snapshot{}, 1000, Filter{})

	require.Len(t, got.Questions, 7)
	assert.ElementsMatch(t, ids(catalog), ids(got.Questions))
}

func TestSelector_Pick_DoesNotReorderCatalog(t *testing.T) {
	catalog := newCatalog(20)
	want := ids(catalog)

	s := New(rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 20; i++ {
		s.Pick(catalog, nil, 5, Filter{})
	}

	assert.Equal(t, want, ids(catalog))
}

func TestSelector_Pick_IsUniform(t *testing.T) {
	catalog := newCatalog(5)
	counts := make(map[string]int)

	s := New(rand.New(rand.NewPCG(5, 6)))
	const rounds = 5000
	for i := 0; i < rounds; i++ {
		got := s.Pick(catalog, nil, 1, Filter{})
		require.Len(t, got.Questions, 1)
		counts[got.Questions[0].ID]++
	}

	// Each question is expected rounds/5 = 1000 times
	for _, id := range ids(catalog) {
		assert.InDelta(t, 1000, counts[id], 150, id)
	}
}

func TestStatus_Message(t *testing.T) {
	assert.Empty(t, StatusOK.Message())
	assert.NotEqual(t, StatusWrongPoolEmpty.Message(), StatusAllAttempted.Message())
	assert.Contains(t, StatusWrongPoolEmpty.Message(), "wrong")
	assert.Contains(t, StatusAllAttempted.Message(), "attempted")
	assert.Equal(t, "all_attempted", StatusAllAttempted.String())
}
