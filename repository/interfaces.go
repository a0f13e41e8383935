package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/models"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// GeoBox is a latitude/longitude bounding box used for location filtering.
type GeoBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// IssueFilter narrows issue listings. Zero values mean "no filter".
type IssueFilter struct {
	Category   string
	Status     string
	Zone       string
	AssignedTo *primitive.ObjectID
	Box        *GeoBox
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type IssueRepository interface {
	Insert(ctx context.Context, issue *models.Issue) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	// Find returns one page sorted by creation time descending plus the
	// total match count.
	Find(ctx context.Context, filter IssueFilter, page, limit int) ([]models.Issue, int64, error)
	FindByCitizen(ctx context.Context, citizenID primitive.ObjectID) ([]models.Issue, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Issue, error)
	// FindAssigned returns issues assigned to adminID, most recently
	// updated first.
	FindAssigned(ctx context.Context, adminID primitive.ObjectID, limit int) ([]models.Issue, error)
	CountsByStatusAssigned(ctx context.Context, adminID primitive.ObjectID) (map[models.IssueStatus]int64, error)
	CountsByStatusForIssues(ctx context.Context, ids []primitive.ObjectID) (map[models.IssueStatus]int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.IssueStatus, resolutionConfirmed bool) error
}

type IssueUpdateRepository interface {
	Insert(ctx context.Context, update *models.IssueUpdate) error
	// FindByIssue returns the full history, newest first.
	FindByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.IssueUpdate, error)
	// FindByUpdater returns the user's most recent updates, newest first.
	FindByUpdater(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.IssueUpdate, error)
	DistinctIssues(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// MarkRead flips isRead on a notification owned by userID. Returns
	// ErrNotFound when no owned notification matches.
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}
