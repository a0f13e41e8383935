package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cityfix-be/models"
)

type mongoIssueRepository struct {
	collection *mongo.Collection
}

// NewIssueRepository returns an IssueRepository backed by the given collection.
func NewIssueRepository(collection *mongo.Collection) IssueRepository {
	return &mongoIssueRepository{collection: collection}
}

func (r *mongoIssueRepository) Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, issue)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return issue.ID, nil
}

func (r *mongoIssueRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

func buildIssueFilter(f IssueFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Zone != "" {
		filter["zone"] = f.Zone
	}
	if f.AssignedTo != nil {
		filter["assignedTo"] = *f.AssignedTo
	}
	if f.Box != nil {
		filter["location.latitude"] = bson.M{"$gte": f.Box.MinLat, "$lte": f.Box.MaxLat}
		filter["location.longitude"] = bson.M{"$gte": f.Box.MinLng, "$lte": f.Box.MaxLng}
	}
	return filter
}

func (r *mongoIssueRepository) Find(ctx context.Context, f IssueFilter, page, limit int) ([]models.Issue, int64, error) {
	filter := buildIssueFilter(f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *mongoIssueRepository) FindByCitizen(ctx context.Context, citizenID primitive.ObjectID) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"citizen": citizenID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *mongoIssueRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *mongoIssueRepository) FindAssigned(ctx context.Context, adminID primitive.ObjectID, limit int) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"assignedTo": adminID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *mongoIssueRepository) CountsByStatusAssigned(ctx context.Context, adminID primitive.ObjectID) (map[models.IssueStatus]int64, error) {
	return r.countsByStatus(ctx, bson.M{"assignedTo": adminID})
}

func (r *mongoIssueRepository) CountsByStatusForIssues(ctx context.Context, ids []primitive.ObjectID) (map[models.IssueStatus]int64, error) {
	if len(ids) == 0 {
		return map[models.IssueStatus]int64{}, nil
	}
	return r.countsByStatus(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoIssueRepository) countsByStatus(ctx context.Context, match bson.M) (map[models.IssueStatus]int64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{
			"$group": bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.IssueStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.IssueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *mongoIssueRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, resolutionConfirmed bool) error {
	update := bson.M{"$set": bson.M{
		"status":              status,
		"resolutionConfirmed": resolutionConfirmed,
		"updatedAt":           time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
