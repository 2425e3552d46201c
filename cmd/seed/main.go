package main

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vocabbattle/internal/config"
	"vocabbattle/internal/logger"
	"vocabbattle/internal/model"
	"vocabbattle/internal/repository"
	"vocabbattle/internal/service"
)

var words = [][2]string{
	{"abundant", "existing in large quantities"},
	{"benevolent", "well meaning and kindly"},
	{"candid", "truthful and straightforward"},
	{"diligent", "showing care in one's work"},
	{"eloquent", "fluent or persuasive in speaking"},
	{"frugal", "economical with money or food"},
	{"gregarious", "fond of company"},
	{"hinder", "to make something difficult"},
	{"impartial", "treating all rivals equally"},
	{"jubilant", "feeling great happiness"},
	{"keen", "eager or enthusiastic"},
	{"lucid", "expressed clearly"},
	{"meticulous", "showing great attention to detail"},
	{"novice", "a person new to an activity"},
	{"obsolete", "no longer in use"},
	{"pragmatic", "dealing with things sensibly"},
	{"resilient", "able to recover quickly"},
	{"scrutinize", "to examine closely"},
	{"tenacious", "holding firmly to something"},
	{"versatile", "able to adapt to many functions"},
}

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	vocabRepo := repository.NewVocabularyRepo(client.Database(cfg.MongoDB))

	items := make([]*model.VocabularyItem, 0, len(words))
	for _, w := range words {
		items = append(items, &model.VocabularyItem{
			ID:      primitive.NewObjectID().Hex(),
			Word:    w[0],
			Meaning: w[1],
		})
	}

	if err := vocabRepo.InsertMany(ctx, items); err != nil {
		logger.Fatalf("Failed to insert vocabulary: %v", err)
	}
	fmt.Printf("Successfully seeded %d vocabulary items\n", len(items))

	// Dev tokens for two local players
	authSvc := service.NewAuthService(cfg.JWTSecret)
	for i, name := range []string{"alice", "bob"} {
		token, err := authSvc.IssueAccessToken(fmt.Sprintf("dev-user-%d", i+1), name+"@example.com", name, "user", 24*time.Hour)
		if err != nil {
			logger.Fatalf("Failed to sign token for %s: %v", name, err)
		}
		fmt.Printf("%s: %s\n", name, token)
	}
}
