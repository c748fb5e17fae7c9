package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordplay/internal/models"
	"wordplay/internal/utils"
)

var animals = []models.VocabWord{
	{ID: "word-0", SourceTerm: "猫", TargetTerm: "cat"},
	{ID: "word-1", SourceTerm: "狗", TargetTerm: "dog"},
}

func requireStateError(t *testing.T, err error, expected, actual State) {
	t.Helper()
	var se *StateError
	require.True(t, errors.As(err, &se), "expected *StateError, got %v", err)
	assert.Equal(t, expected, se.Expected)
	assert.Equal(t, actual, se.Actual)
}

func TestMachineFullRun(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateSelecting, m.State())
	assert.Nil(t, m.Session())

	require.NoError(t, m.Start(animals, 2))
	assert.Equal(t, StateInProgress, m.State())

	word, err := m.CurrentWord()
	require.NoError(t, err)
	assert.Equal(t, "cat", word.TargetTerm)

	rec, err := m.AnswerCurrent("cat")
	require.NoError(t, err)
	assert.Equal(t, models.AnswerRecord{WordID: "word-0", SubmittedText: "cat", IsCorrect: true}, rec)
	assert.Equal(t, StateInProgress, m.State())

	rec, err = m.AnswerCurrent(" DOG ")
	require.NoError(t, err)
	assert.True(t, rec.IsCorrect)
	assert.Equal(t, "DOG", rec.SubmittedText)

	// The last answer reaches the boundary without completing.
	assert.Equal(t, StateCompleted, m.State())
	assert.False(t, m.Session().IsComplete)

	require.NoError(t, m.Complete())
	s := m.Session()
	assert.True(t, s.IsComplete)
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Len(t, s.Answers, 2)
	assert.Equal(t, models.Score{Correct: 2, Total: 2, Percentage: 100}, s.Score())

	// Complete is idempotent.
	require.NoError(t, m.Complete())

	discarded := m.Restart()
	require.NotNil(t, discarded)
	assert.True(t, discarded.IsComplete)
	assert.Equal(t, StateSelecting, m.State())
}

func TestMachineRejectsBlankAnswers(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(animals, 2))

	for _, blank := range []string{"", "  ", "\t"} {
		_, err := m.AnswerCurrent(blank)
		assert.ErrorIs(t, err, utils.ErrEmptyAnswer)
	}

	s := m.Session()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Answers)
}

func TestMachineWrongState(t *testing.T) {
	t.Run("answer while selecting", func(t *testing.T) {
		m := NewMachine()
		_, err := m.AnswerCurrent("cat")
		requireStateError(t, err, StateInProgress, StateSelecting)
	})

	t.Run("complete while selecting", func(t *testing.T) {
		m := NewMachine()
		requireStateError(t, m.Complete(), StateCompleted, StateSelecting)
	})

	t.Run("complete while in progress", func(t *testing.T) {
		m := NewMachine()
		require.NoError(t, m.Start(animals, 2))
		_, err := m.AnswerCurrent("cat")
		require.NoError(t, err)

		requireStateError(t, m.Complete(), StateCompleted, StateInProgress)
		assert.False(t, m.Session().IsComplete)
	})

	t.Run("start twice", func(t *testing.T) {
		m := NewMachine()
		require.NoError(t, m.Start(animals, 2))
		requireStateError(t, m.Start(animals, 2), StateSelecting, StateInProgress)
	})

	t.Run("answer after last question", func(t *testing.T) {
		m := NewMachine()
		require.NoError(t, m.Start(animals[:1], 1))
		_, err := m.AnswerCurrent("cat")
		require.NoError(t, err)

		_, err = m.AnswerCurrent("dog")
		requireStateError(t, err, StateInProgress, StateCompleted)
		assert.Len(t, m.Session().Answers, 1)
	})

	t.Run("current word while completed", func(t *testing.T) {
		m := NewMachine()
		require.NoError(t, m.Start(animals[:1], 1))
		_, err := m.AnswerCurrent("cat")
		require.NoError(t, err)

		_, err = m.CurrentWord()
		requireStateError(t, err, StateInProgress, StateCompleted)
	})
}

func TestMachineStartValidation(t *testing.T) {
	tests := []struct {
		name  string
		words []models.VocabWord
		count int
	}{
		{name: "zero count", words: nil, count: 0},
		{name: "count mismatch", words: animals, count: 3},
		{name: "fewer words than count", words: animals[:1], count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			err := m.Start(tt.words, tt.count)
			var ve utils.ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, StateSelecting, m.State())
		})
	}
}

func TestMachineRestartFromAnyState(t *testing.T) {
	m := NewMachine()
	assert.Nil(t, m.Restart())

	require.NoError(t, m.Start(animals, 2))
	_, err := m.AnswerCurrent("wrong")
	require.NoError(t, err)

	discarded := m.Restart()
	require.NotNil(t, discarded)
	assert.Equal(t, 1, discarded.CurrentIndex)
	assert.Equal(t, StateSelecting, m.State())
}

func TestSessionSnapshotIsolation(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(animals, 2))

	snap := m.Session()
	snap.Words[0].TargetTerm = "tampered"
	snap.CurrentIndex = 2

	word, err := m.CurrentWord()
	require.NoError(t, err)
	assert.Equal(t, "cat", word.TargetTerm)
}

func TestSessionProgressAndReview(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Start(animals, 2))

	n, total := m.Session().Progress()
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, total)

	_, err := m.AnswerCurrent("cat")
	require.NoError(t, err)
	_, err = m.AnswerCurrent("dogs")
	require.NoError(t, err)

	s := m.Session()
	n, total = s.Progress()
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, total)

	review := s.Review()
	require.Len(t, review, 2)
	assert.Equal(t, models.ReviewItem{Number: 1, SourceTerm: "猫", TargetTerm: "cat", SubmittedText: "cat", IsCorrect: true}, review[0])
	assert.Equal(t, models.ReviewItem{Number: 2, SourceTerm: "狗", TargetTerm: "dog", SubmittedText: "dogs", IsCorrect: false}, review[1])
	assert.Equal(t, models.Score{Correct: 1, Total: 2, Percentage: 50}, s.Score())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "selecting", StateSelecting.String())
	assert.Equal(t, "in progress", StateInProgress.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "State(9)", State(9).String())
}
