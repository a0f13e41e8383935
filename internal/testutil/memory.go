// Package testutil provides in-memory repository implementations for tests.
// They mirror the Mongo repositories' sorting and filtering contracts.
package testutil

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/models"
	"cityfix-be/repository"
)

type MemUserRepo struct {
	Users []models.User
}

func (r *MemUserRepo) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.Users = append(r.Users, *user)
	return user.ID, nil
}

func (r *MemUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for _, u := range r.Users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.Users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemUserRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	var count int64
	for _, u := range r.Users {
		if u.Email == email {
			count++
		}
	}
	return count, nil
}

func (r *MemUserRepo) FindByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var result []models.User
	for _, u := range r.Users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *MemUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []models.User
	for _, u := range r.Users {
		if wanted[u.ID] {
			result = append(result, u)
		}
	}
	return result, nil
}

type MemIssueRepo struct {
	Issues []models.Issue
}

func (r *MemIssueRepo) Insert(_ context.Context, issue *models.Issue) (primitive.ObjectID, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	r.Issues = append(r.Issues, *issue)
	return issue.ID, nil
}

func (r *MemIssueRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	for _, issue := range r.Issues {
		if issue.ID == id {
			found := issue
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func issueMatches(issue models.Issue, f repository.IssueFilter) bool {
	if f.Category != "" && string(issue.Category) != f.Category {
		return false
	}
	if f.Status != "" && string(issue.Status) != f.Status {
		return false
	}
	if f.Zone != "" && issue.Zone != f.Zone {
		return false
	}
	if f.AssignedTo != nil && (issue.AssignedTo == nil || *issue.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.Box != nil {
		lat, lng := issue.Location.Latitude, issue.Location.Longitude
		if lat < f.Box.MinLat || lat > f.Box.MaxLat || lng < f.Box.MinLng || lng > f.Box.MaxLng {
			return false
		}
	}
	return true
}

func (r *MemIssueRepo) Find(_ context.Context, f repository.IssueFilter, page, limit int) ([]models.Issue, int64, error) {
	var matched []models.Issue
	for _, issue := range r.Issues {
		if issueMatches(issue, f) {
			matched = append(matched, issue)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemIssueRepo) FindByCitizen(_ context.Context, citizenID primitive.ObjectID) ([]models.Issue, error) {
	var result []models.Issue
	for _, issue := range r.Issues {
		if issue.Citizen == citizenID {
			result = append(result, issue)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemIssueRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Issue, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []models.Issue
	for _, issue := range r.Issues {
		if wanted[issue.ID] {
			result = append(result, issue)
		}
	}
	return result, nil
}

func (r *MemIssueRepo) FindAssigned(_ context.Context, adminID primitive.ObjectID, limit int) ([]models.Issue, error) {
	var result []models.Issue
	for _, issue := range r.Issues {
		if issue.AssignedTo != nil && *issue.AssignedTo == adminID {
			result = append(result, issue)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemIssueRepo) CountsByStatusAssigned(_ context.Context, adminID primitive.ObjectID) (map[models.IssueStatus]int64, error) {
	counts := make(map[models.IssueStatus]int64)
	for _, issue := range r.Issues {
		if issue.AssignedTo != nil && *issue.AssignedTo == adminID {
			counts[issue.Status]++
		}
	}
	return counts, nil
}

func (r *MemIssueRepo) CountsByStatusForIssues(_ context.Context, ids []primitive.ObjectID) (map[models.IssueStatus]int64, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	counts := make(map[models.IssueStatus]int64)
	for _, issue := range r.Issues {
		if wanted[issue.ID] {
			counts[issue.Status]++
		}
	}
	return counts, nil
}

func (r *MemIssueRepo) SetStatus(_ context.Context, id primitive.ObjectID, status models.IssueStatus, resolutionConfirmed bool) error {
	for i := range r.Issues {
		if r.Issues[i].ID == id {
			r.Issues[i].Status = status
			r.Issues[i].ResolutionConfirmed = resolutionConfirmed
			return nil
		}
	}
	return repository.ErrNotFound
}

type MemUpdateRepo struct {
	Updates []models.IssueUpdate
}

func (r *MemUpdateRepo) Insert(_ context.Context, update *models.IssueUpdate) error {
	if update.ID.IsZero() {
		update.ID = primitive.NewObjectID()
	}
	r.Updates = append(r.Updates, *update)
	return nil
}

func (r *MemUpdateRepo) FindByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.IssueUpdate, error) {
	var result []models.IssueUpdate
	for _, u := range r.Updates {
		if u.Issue == issueID {
			result = append(result, u)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemUpdateRepo) FindByUpdater(_ context.Context, userID primitive.ObjectID, limit int) ([]models.IssueUpdate, error) {
	var result []models.IssueUpdate
	for _, u := range r.Updates {
		if u.UpdatedBy == userID {
			result = append(result, u)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemUpdateRepo) DistinctIssues(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, u := range r.Updates {
		if u.UpdatedBy == userID && !seen[u.Issue] {
			seen[u.Issue] = true
			ids = append(ids, u.Issue)
		}
	}
	return ids, nil
}

type MemNotificationRepo struct {
	Notifications []models.Notification
}

func (r *MemNotificationRepo) Insert(_ context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	r.Notifications = append(r.Notifications, *notification)
	return nil
}

func (r *MemNotificationRepo) FindByUser(_ context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	var matched []models.Notification
	for _, n := range r.Notifications {
		if n.User != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemNotificationRepo) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range r.Notifications {
		if n.User == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemNotificationRepo) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	for i := range r.Notifications {
		if r.Notifications[i].ID == id && r.Notifications[i].User == userID {
			r.Notifications[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *MemNotificationRepo) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	for i := range r.Notifications {
		if r.Notifications[i].User == userID {
			r.Notifications[i].IsRead = true
		}
	}
	return nil
}
