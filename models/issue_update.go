package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueUpdate is one append-only audit record in an issue's history. Records
// are never mutated or deleted.
type IssueUpdate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Issue     primitive.ObjectID `bson:"issue" json:"issue"`
	UpdatedBy primitive.ObjectID `bson:"updatedBy" json:"updatedBy"`
	Status    IssueStatus        `bson:"status" json:"status"`
	Comment   string             `bson:"comment" json:"comment"`
	IsPublic  bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
