package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cityfix-be/models"
)

type mongoIssueUpdateRepository struct {
	collection *mongo.Collection
}

// NewIssueUpdateRepository returns an IssueUpdateRepository backed by the
// given collection.
func NewIssueUpdateRepository(collection *mongo.Collection) IssueUpdateRepository {
	return &mongoIssueUpdateRepository{collection: collection}
}

func (r *mongoIssueUpdateRepository) Insert(ctx context.Context, update *models.IssueUpdate) error {
	if update.ID.IsZero() {
		update.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, update)
	return err
}

func (r *mongoIssueUpdateRepository) FindByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.IssueUpdate, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.IssueUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *mongoIssueUpdateRepository) FindByUpdater(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.IssueUpdate, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"updatedBy": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.IssueUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *mongoIssueUpdateRepository) DistinctIssues(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "issue", bson.M{"updatedBy": userID})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
