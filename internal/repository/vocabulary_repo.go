package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"vocabbattle/internal/model"
)

// VocabularyRepo reads study-set items used to build battle questions
type VocabularyRepo interface {
	Sample(ctx context.Context, limit int) ([]*model.VocabularyItem, error)
	InsertMany(ctx context.Context, items []*model.VocabularyItem) error
}

type vocabularyRepo struct {
	collection *mongo.Collection
}

func NewVocabularyRepo(db *mongo.Database) VocabularyRepo {
	return &vocabularyRepo{
		collection: db.Collection("study_set_items"),
	}
}

// Sample returns up to limit random non-deleted items
func (r *vocabularyRepo) Sample(ctx context.Context, limit int) ([]*model.VocabularyItem, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isDeleted": bson.M{"$ne": true}}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
		// Items written by other services carry ObjectIDs.
		{{Key: "$project", Value: bson.M{
			"_id":       bson.M{"$toString": "$_id"},
			"word":      1,
			"meaning":   1,
			"isDeleted": 1,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedDB, err)
	}
	defer cursor.Close(ctx)

	var items []*model.VocabularyItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedDB, err)
	}

	return items, nil
}

func (r *vocabularyRepo) InsertMany(ctx context.Context, items []*model.VocabularyItem) error {
	docs := make([]interface{}, len(items))
	for i, item := range items {
		docs[i] = item
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
