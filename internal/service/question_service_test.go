package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vocabbattle/internal/model"
)

func vocabItems(n int) []*model.VocabularyItem {
	items := make([]*model.VocabularyItem, n)
	for i := range items {
		items[i] = &model.VocabularyItem{
			ID:      fmt.Sprintf("item-%d", i+1),
			Word:    fmt.Sprintf("word-%d", i+1),
			Meaning: fmt.Sprintf("meaning-%d", i+1),
		}
	}
	return items
}

func TestBuildQuestions(t *testing.T) {
	t.Parallel()

	t.Run("Well Formed Questions", func(t *testing.T) {
		t.Parallel()
		items := vocabItems(12)
		meanings := make(map[string]string)
		for _, it := range items {
			meanings[it.ID] = it.Meaning
		}

		vocab := &MockVocabularyRepo{}
		vocab.On("Sample", mock.Anything, 40).Return(items, nil)
		svc := NewQuestionService(vocab, rand.New(rand.NewSource(42)))

		drafts, err := svc.BuildQuestions(context.Background(), 5)
		require.NoError(t, err)
		require.Len(t, drafts, 5)

		subjects := make(map[string]bool)
		for i, d := range drafts {
			assert.Equal(t, i+1, d.Position)
			assert.False(t, subjects[d.SourceItemID], "subjects must be distinct")
			subjects[d.SourceItemID] = true

			require.Len(t, d.Options, 4)
			texts := make(map[string]bool)
			correct := 0
			for j, opt := range d.Options {
				assert.Equal(t, model.OptionLabels[j], opt.Label)
				assert.False(t, texts[opt.Text], "option texts must be distinct")
				texts[opt.Text] = true
				if opt.Text == meanings[d.SourceItemID] {
					correct++
					assert.Equal(t, opt.Label, d.CorrectOption)
				}
			}
			assert.Equal(t, 1, correct)
			assert.Equal(t, fmt.Sprintf("Which word means %q?", meanings[d.SourceItemID]), d.QuestionText)
		}
		vocab.AssertExpectations(t)
	})

	t.Run("Sample Size Scales With Count", func(t *testing.T) {
		t.Parallel()
		vocab := &MockVocabularyRepo{}
		vocab.On("Sample", mock.Anything, 80).Return(vocabItems(30), nil)
		svc := NewQuestionService(vocab, rand.New(rand.NewSource(1)))

		drafts, err := svc.BuildQuestions(context.Background(), 20)
		require.NoError(t, err)
		assert.Len(t, drafts, 20)
		vocab.AssertExpectations(t)
	})

	t.Run("Fewer Items Than Count", func(t *testing.T) {
		t.Parallel()
		vocab := &MockVocabularyRepo{}
		vocab.On("Sample", mock.Anything, 40).Return(vocabItems(4), nil)
		svc := NewQuestionService(vocab, rand.New(rand.NewSource(3)))

		drafts, err := svc.BuildQuestions(context.Background(), 10)
		require.NoError(t, err)
		assert.Len(t, drafts, 4)
	})

	t.Run("Too Few Items", func(t *testing.T) {
		t.Parallel()
		for _, n := range []int{0, 1, 3} {
			vocab := &MockVocabularyRepo{}
			vocab.On("Sample", mock.Anything, 40).Return(vocabItems(n), nil)
			svc := NewQuestionService(vocab, nil)

			drafts, err := svc.BuildQuestions(context.Background(), 10)
			assert.ErrorIs(t, err, ErrNotEnoughVocabulary, "items=%d", n)
			assert.Nil(t, drafts)
		}
	})

	t.Run("No Distinct Decoys", func(t *testing.T) {
		t.Parallel()
		items := vocabItems(6)
		for _, it := range items {
			it.Meaning = "same"
		}
		vocab := &MockVocabularyRepo{}
		vocab.On("Sample", mock.Anything, 40).Return(items, nil)
		svc := NewQuestionService(vocab, rand.New(rand.NewSource(5)))

		_, err := svc.BuildQuestions(context.Background(), 3)
		assert.ErrorIs(t, err, ErrNotEnoughVocabulary)
	})

	t.Run("Repository Error", func(t *testing.T) {
		t.Parallel()
		vocab := &MockVocabularyRepo{}
		vocab.On("Sample", mock.Anything, 40).Return(nil, assert.AnError)
		svc := NewQuestionService(vocab, nil)

		_, err := svc.BuildQuestions(context.Background(), 10)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, ErrNotEnoughVocabulary)
	})
}
