package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vocabbattle/internal/model"
)

// BattleRepo persists matches, player slots, questions and answers.
// Multi-document writes run in a transaction, so MongoDB must run as a replica set.
type BattleRepo interface {
	CreateMatch(ctx context.Context, userIDs []string, startedAt time.Time) (string, error)
	CreateQuestions(ctx context.Context, matchID string, drafts []model.QuestionDraft) ([]*model.BattleQuestion, error)
	RecordAnswer(ctx context.Context, answer *model.BattleAnswer) error
	FinalizeMatch(ctx context.Context, result *model.MatchResult) error
}

type MongoBattleRepo struct {
	client    *mongo.Client
	matches   *mongo.Collection
	players   *mongo.Collection
	questions *mongo.Collection
	answers   *mongo.Collection
}

func NewBattleRepo(db *mongo.Database) *MongoBattleRepo {
	return &MongoBattleRepo{
		client:    db.Client(),
		matches:   db.Collection("battle_matches"),
		players:   db.Collection("battle_players"),
		questions: db.Collection("battle_questions"),
		answers:   db.Collection("battle_answers"),
	}
}

// EnsureIndexes creates the uniqueness constraints the battle flow relies on
func (r *MongoBattleRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.players.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "matchId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("players index: %w", err)
	}

	_, err = r.answers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "matchId", Value: 1}, {Key: "questionId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("answers index: %w", err)
	}

	_, err = r.questions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "matchId", Value: 1}, {Key: "position", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("questions index: %w", err)
	}
	return nil
}

func (r *MongoBattleRepo) CreateMatch(ctx context.Context, userIDs []string, startedAt time.Time) (string, error) {
	match := &model.Match{
		ID:        primitive.NewObjectID().Hex(),
		Status:    model.MatchInProgress,
		StartedAt: startedAt,
	}

	err := r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.matches.InsertOne(sc, match); err != nil {
			return err
		}

		docs := make([]interface{}, 0, len(userIDs))
		for _, userID := range userIDs {
			docs = append(docs, &model.MatchPlayer{
				ID:       primitive.NewObjectID().Hex(),
				MatchID:  match.ID,
				UserID:   userID,
				JoinedAt: startedAt,
			})
		}
		_, err := r.players.InsertMany(sc, docs)
		return err
	})
	if err != nil {
		return "", wrapDBError(err)
	}

	return match.ID, nil
}

func (r *MongoBattleRepo) CreateQuestions(ctx context.Context, matchID string, drafts []model.QuestionDraft) ([]*model.BattleQuestion, error) {
	docs := make([]interface{}, 0, len(drafts))
	questions := make([]*model.BattleQuestion, 0, len(drafts))

	for _, d := range drafts {
		texts := make(map[string]string, len(d.Options))
		for _, o := range d.Options {
			texts[o.Label] = o.Text
		}

		rec := &model.QuestionRecord{
			ID:            primitive.NewObjectID().Hex(),
			MatchID:       matchID,
			StudySetItem:  d.SourceItemID,
			QuestionText:  d.QuestionText,
			OptionA:       texts["A"],
			OptionB:       texts["B"],
			OptionC:       texts["C"],
			OptionD:       texts["D"],
			CorrectOption: d.CorrectOption,
			Position:      d.Position,
		}
		docs = append(docs, rec)

		questions = append(questions, &model.BattleQuestion{
			ID:            rec.ID,
			SourceItemID:  d.SourceItemID,
			QuestionText:  d.QuestionText,
			Position:      d.Position,
			Options:       d.Options,
			CorrectOption: d.CorrectOption,
		})
	}

	if len(docs) == 0 {
		return questions, nil
	}

	if _, err := r.questions.InsertMany(ctx, docs); err != nil {
		return nil, wrapDBError(err)
	}

	return questions, nil
}

// RecordAnswer stores the answer and increments the player score atomically.
// It fails with ErrMatchClosed once the match has been finalized.
func (r *MongoBattleRepo) RecordAnswer(ctx context.Context, answer *model.BattleAnswer) error {
	if answer.ID == "" {
		answer.ID = primitive.NewObjectID().Hex()
	}
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now()
	}

	err := r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		// Touching the match row conflicts with a concurrent FinalizeMatch.
		res, err := r.matches.UpdateOne(sc,
			bson.M{"_id": answer.MatchID, "status": model.MatchInProgress},
			bson.M{"$set": bson.M{"lastAnswerAt": answer.AnsweredAt}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrMatchClosed
		}

		if _, err := r.answers.InsertOne(sc, answer); err != nil {
			return err
		}

		res, err = r.players.UpdateOne(sc,
			bson.M{"matchId": answer.MatchID, "userId": answer.UserID},
			bson.M{"$inc": bson.M{"score": answer.ScoreDelta}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrMatchNotFound
		}
		return nil
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateAnswer
	}

	return wrapDBError(err)
}

// FinalizeMatch writes the match outcome and every player's final state together
func (r *MongoBattleRepo) FinalizeMatch(ctx context.Context, result *model.MatchResult) error {
	err := r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.matches.UpdateOne(sc,
			bson.M{"_id": result.MatchID},
			bson.M{"$set": bson.M{
				"status":   result.Status,
				"endedAt":  result.EndedAt,
				"winnerId": result.WinnerID,
			}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrMatchNotFound
		}

		for _, p := range result.Players {
			set := bson.M{
				"score":    p.Score,
				"isWinner": p.IsWinner,
			}
			if p.LeftAt != nil {
				set["leftAt"] = *p.LeftAt
			}
			if _, err := r.players.UpdateOne(sc,
				bson.M{"matchId": result.MatchID, "userId": p.UserID},
				bson.M{"$set": set},
			); err != nil {
				return err
			}
		}
		return nil
	})

	return wrapDBError(err)
}

func (r *MongoBattleRepo) inTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func wrapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrMatchClosed):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnexpectedDB, err)
	}
}
