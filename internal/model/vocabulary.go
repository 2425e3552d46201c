package model

// VocabularyItem is a study-set entry used as question subject or decoy
type VocabularyItem struct {
	ID        string `json:"id" bson:"_id"`
	Word      string `json:"word" bson:"word"`
	Meaning   string `json:"meaning" bson:"meaning"`
	IsDeleted bool   `json:"isDeleted" bson:"isDeleted"`
}
