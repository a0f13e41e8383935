package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/models"
	"cityfix-be/repository"
)

// IssueSummary is the partial issue joined into each notification.
type IssueSummary struct {
	ID                  primitive.ObjectID   `json:"id"`
	Category            models.IssueCategory `json:"category"`
	Description         string               `json:"description"`
	Status              models.IssueStatus   `json:"status"`
	ResolutionConfirmed bool                 `json:"resolutionConfirmed"`
}

// NotificationView is a notification with its issue summary joined in.
type NotificationView struct {
	ID        primitive.ObjectID      `json:"id"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	IsRead    bool                    `json:"isRead"`
	Issue     *IssueSummary           `json:"issue,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NotificationPage is one page of a user's notifications. UnreadCount spans
// the user's whole inbox, independent of filters and pagination.
type NotificationPage struct {
	Notifications []NotificationView `json:"notifications"`
	TotalPages    int                `json:"totalPages"`
	CurrentPage   int                `json:"currentPage"`
	Total         int64              `json:"total"`
	UnreadCount   int64              `json:"unreadCount"`
}

// NotificationService exposes a user's own notification inbox.
type NotificationService struct {
	notifications repository.NotificationRepository
	issues        repository.IssueRepository
}

func NewNotificationService(notifications repository.NotificationRepository, issues repository.IssueRepository) *NotificationService {
	return &NotificationService{notifications: notifications, issues: issues}
}

// List returns one page of the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *models.User, unreadOnly bool, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := s.notifications.FindByUser(ctx, actor.ID, unreadOnly, page, limit)
	if err != nil {
		return nil, storeErr("notification find", err)
	}

	unreadCount, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, storeErr("notification count", err)
	}

	issueIDs := make([]primitive.ObjectID, 0, len(notifications))
	for _, n := range notifications {
		issueIDs = append(issueIDs, n.Issue)
	}
	issues, err := s.issues.FindByIDs(ctx, issueIDs)
	if err != nil {
		return nil, storeErr("issue find", err)
	}
	issuesByID := make(map[primitive.ObjectID]models.Issue, len(issues))
	for _, issue := range issues {
		issuesByID[issue.ID] = issue
	}

	views := make([]NotificationView, 0, len(notifications))
	for _, n := range notifications {
		view := NotificationView{
			ID:        n.ID,
			Message:   n.Message,
			Type:      n.Type,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if issue, ok := issuesByID[n.Issue]; ok {
			view.Issue = &IssueSummary{
				ID:                  issue.ID,
				Category:            issue.Category,
				Description:         issue.Description,
				Status:              issue.Status,
				ResolutionConfirmed: issue.ResolutionConfirmed,
			}
		}
		views = append(views, view)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &NotificationPage{
		Notifications: views,
		TotalPages:    totalPages,
		CurrentPage:   page,
		Total:         total,
		UnreadCount:   unreadCount,
	}, nil
}

// MarkRead flips one of the actor's notifications to read. Marking an
// already-read notification succeeds as a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	err := s.notifications.MarkRead(ctx, id, actor.ID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return storeErr("notification update", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the actor.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.User) error {
	if err := s.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return storeErr("notification update", err)
	}
	return nil
}
