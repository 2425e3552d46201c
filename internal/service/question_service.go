package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"vocabbattle/internal/model"
	"vocabbattle/internal/repository"
)

const (
	minVocabularySample = 40
	decoysPerQuestion   = 3
	questionTemplate    = "Which word means %q?"
)

// QuestionService builds multiple-choice questions from vocabulary items
type QuestionService struct {
	vocab repository.VocabularyRepo

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewQuestionService creates a question builder. A nil rng is seeded from the clock.
func NewQuestionService(vocab repository.VocabularyRepo, rng *rand.Rand) *QuestionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionService{
		vocab: vocab,
		rng:   rng,
	}
}

// BuildQuestions returns up to count questions with one correct and three decoy meanings.
// Subjects without enough distinct decoys are skipped; if none survive the build fails.
func (s *QuestionService) BuildQuestions(ctx context.Context, count int) ([]model.QuestionDraft, error) {
	if count < 1 {
		count = 1
	}

	items, err := s.vocab.Sample(ctx, max(count*4, minVocabularySample))
	if err != nil {
		return nil, fmt.Errorf("sample vocabulary: %w", err)
	}
	if len(items) < decoysPerQuestion+1 {
		return nil, ErrNotEnoughVocabulary
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subjects := s.shuffled(items)
	if len(subjects) > count {
		subjects = subjects[:count]
	}

	drafts := make([]model.QuestionDraft, 0, len(subjects))
	for _, subject := range subjects {
		decoys := s.pickDecoys(items, subject)
		if len(decoys) < decoysPerQuestion {
			continue
		}

		texts := append([]string{subject.Meaning}, decoys...)
		s.rng.Shuffle(len(texts), func(i, j int) {
			texts[i], texts[j] = texts[j], texts[i]
		})

		options := make([]model.Option, len(texts))
		correct := ""
		for i, text := range texts {
			options[i] = model.Option{Label: model.OptionLabels[i], Text: text}
			if text == subject.Meaning {
				correct = model.OptionLabels[i]
			}
		}

		drafts = append(drafts, model.QuestionDraft{
			SourceItemID:  subject.ID,
			QuestionText:  fmt.Sprintf(questionTemplate, subject.Meaning),
			Position:      len(drafts) + 1,
			Options:       options,
			CorrectOption: correct,
		})
	}

	if len(drafts) == 0 {
		return nil, ErrNotEnoughVocabulary
	}
	return drafts, nil
}

// pickDecoys draws distinct meanings from other items, never equal to the subject's meaning
func (s *QuestionService) pickDecoys(items []*model.VocabularyItem, subject *model.VocabularyItem) []string {
	seen := map[string]struct{}{subject.Meaning: {}}
	decoys := make([]string, 0, decoysPerQuestion)

	for _, item := range s.shuffled(items) {
		if item.ID == subject.ID || item.Meaning == "" {
			continue
		}
		if _, dup := seen[item.Meaning]; dup {
			continue
		}
		seen[item.Meaning] = struct{}{}
		decoys = append(decoys, item.Meaning)
		if len(decoys) == decoysPerQuestion {
			break
		}
	}
	return decoys
}

func (s *QuestionService) shuffled(items []*model.VocabularyItem) []*model.VocabularyItem {
	out := make([]*model.VocabularyItem, len(items))
	copy(out, items)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
