package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/models"
	"cityfix-be/repository"
)

// degreesPerKm approximates 1 degree of latitude/longitude as 111 km for the
// bounding-box location filter. Not geodesic, by contract.
const degreesPerKm = 1.0 / 111.0

const defaultLocationRadiusKm = 10.0

// statusesSettableBy is the explicit per-role transition policy. Both admin
// tiers may currently set any status; tightening is a table edit here.
var statusesSettableBy = map[models.UserRole]map[models.IssueStatus]bool{
	models.RoleAdmin1: {
		models.Pending:              true,
		models.Acknowledged:         true,
		models.InProgress:           true,
		models.AwaitingConfirmation: true,
		models.Resolved:             true,
	},
	models.RoleAdmin2: {
		models.Pending:              true,
		models.Acknowledged:         true,
		models.InProgress:           true,
		models.AwaitingConfirmation: true,
		models.Resolved:             true,
	},
}

// IssueService owns the issue lifecycle: submission, listing, the status
// workflow with its notification fanout, and the supervisor progress view.
type IssueService struct {
	issues        repository.IssueRepository
	updates       repository.IssueUpdateRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository

	updateScanLimit  int
	recentIssueLimit int
}

func NewIssueService(
	issues repository.IssueRepository,
	updates repository.IssueUpdateRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	updateScanLimit, recentIssueLimit int,
) *IssueService {
	return &IssueService{
		issues:           issues,
		updates:          updates,
		notifications:    notifications,
		users:            users,
		updateScanLimit:  updateScanLimit,
		recentIssueLimit: recentIssueLimit,
	}
}

// SubmitInput carries a citizen's new issue report.
type SubmitInput struct {
	Category    string
	Zone        string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	Priority    string
	PhotoURL    *string
}

// Submit creates an issue in pending status with its first history entry and
// a confirmation notification to the reporter.
func (s *IssueService) Submit(ctx context.Context, actor *models.User, in SubmitInput) (*models.Issue, error) {
	if actor.Role != models.RoleCitizen {
		return nil, ErrForbidden
	}

	verr := newValidationError()
	if !models.ValidCategory(in.Category) {
		verr.add("category", "Valid category required")
	}
	zone := strings.TrimSpace(in.Zone)
	if zone == "" || len(zone) > 100 {
		verr.add("zone", "Zone required")
	}
	if len(strings.TrimSpace(in.Description)) < 10 {
		verr.add("description", "Description must be at least 10 characters")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		verr.add("latitude", "Valid latitude required")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		verr.add("longitude", "Valid longitude required")
	}
	priority := models.Medium
	if in.Priority != "" {
		if !models.ValidPriority(in.Priority) {
			verr.add("priority", "Valid priority required")
		} else {
			priority = models.IssuePriority(in.Priority)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	issue := &models.Issue{
		Citizen:     actor.ID,
		Category:    models.IssueCategory(in.Category),
		Zone:        zone,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
		Location: models.Location{
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			Address:   in.Address,
		},
		Status:    models.Pending,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.issues.Insert(ctx, issue); err != nil {
		return nil, storeErr("issue insert", err)
	}

	if err := s.appendUpdate(ctx, issue.ID, actor.ID, models.Pending, "Issue submitted"); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your %s issue has been submitted successfully.", strings.ToLower(in.Category))
	if err := s.notify(ctx, actor.ID, issue.ID, message); err != nil {
		return nil, err
	}

	return issue, nil
}

// ListInput is the filter/pagination set for issue listings. Location is
// "lat,lng,radiusKm" with the radius optional.
type ListInput struct {
	Category   string
	Status     string
	AssignedTo string
	Location   string
	Page       int
	Limit      int
}

// List returns one page of issues newest-first, with identities joined in.
// An admin1 actor with a zone is always narrowed to that zone.
func (s *IssueService) List(ctx context.Context, actor *models.User, in ListInput) (*IssuePage, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := repository.IssueFilter{
		Category: in.Category,
		Status:   in.Status,
	}

	if in.AssignedTo != "" {
		adminID, err := primitive.ObjectIDFromHex(in.AssignedTo)
		if err != nil {
			verr := newValidationError()
			verr.add("assignedTo", "Valid user id required")
			return nil, verr
		}
		filter.AssignedTo = &adminID
	}

	// Zone visibility restriction: admin1 only ever sees its own zone.
	if actor.Role == models.RoleAdmin1 && actor.Zone != "" {
		filter.Zone = actor.Zone
	}

	if in.Location != "" {
		box, err := parseLocationFilter(in.Location)
		if err != nil {
			verr := newValidationError()
			verr.add("location", "Location filter must be lat,lng,radiusKm")
			return nil, verr
		}
		filter.Box = box
	}

	issues, total, err := s.issues.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, storeErr("issue find", err)
	}

	views, err := s.joinIssues(ctx, issues)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &IssuePage{
		Issues:      views,
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
	}, nil
}

// Get returns an issue plus its full update history, newest first.
func (s *IssueService) Get(ctx context.Context, issueID primitive.ObjectID) (*IssueDetail, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("issue find", err)
	}

	updates, err := s.updates.FindByIssue(ctx, issueID)
	if err != nil {
		return nil, storeErr("update find", err)
	}

	views, err := s.joinIssues(ctx, []models.Issue{*issue})
	if err != nil {
		return nil, err
	}

	updaterIDs := make([]primitive.ObjectID, 0, len(updates))
	for _, u := range updates {
		updaterIDs = append(updaterIDs, u.UpdatedBy)
	}
	usersByID, err := s.usersByID(ctx, updaterIDs)
	if err != nil {
		return nil, err
	}

	updateViews := make([]UpdateView, 0, len(updates))
	for _, u := range updates {
		view := UpdateView{
			ID:        u.ID,
			Status:    u.Status,
			Comment:   u.Comment,
			CreatedAt: u.CreatedAt,
		}
		if updater, ok := usersByID[u.UpdatedBy]; ok {
			view.UpdatedBy = &UserSummary{ID: updater.ID, Name: updater.Name, Role: updater.Role}
		}
		updateViews = append(updateViews, view)
	}

	return &IssueDetail{Issue: views[0], Updates: updateViews}, nil
}

// UserIssues returns all issues created by userID, newest first. Only the
// user themselves or an admin may ask.
func (s *IssueService) UserIssues(ctx context.Context, actor *models.User, userID primitive.ObjectID) ([]IssueView, error) {
	if actor.ID != userID && !actor.Role.IsAdmin() {
		return nil, ErrForbidden
	}

	issues, err := s.issues.FindByCitizen(ctx, userID)
	if err != nil {
		return nil, storeErr("issue find", err)
	}

	return s.joinIssues(ctx, issues)
}

// UpdateStatus moves an issue to newStatus on behalf of an admin, appending
// a history entry and notifying the reporting citizen. Any status other than
// resolved invalidates a prior citizen confirmation.
func (s *IssueService) UpdateStatus(ctx context.Context, actor *models.User, issueID primitive.ObjectID, newStatus, comment string) (*models.Issue, error) {
	allowed, ok := statusesSettableBy[actor.Role]
	if !ok {
		return nil, ErrForbidden
	}
	if !models.ValidStatus(newStatus) {
		verr := newValidationError()
		verr.add("status", "Valid status required")
		return nil, verr
	}
	status := models.IssueStatus(newStatus)
	if !allowed[status] {
		return nil, ErrForbidden
	}

	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("issue find", err)
	}

	confirmed := issue.ResolutionConfirmed
	if status != models.Resolved {
		confirmed = false
	}

	if err := s.issues.SetStatus(ctx, issueID, status, confirmed); err != nil {
		return nil, storeErr("issue status update", err)
	}
	issue.Status = status
	issue.ResolutionConfirmed = confirmed

	if err := s.appendUpdate(ctx, issueID, actor.ID, status, comment); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your %s issue status has been updated to %s.",
		strings.ToLower(string(issue.Category)),
		strings.ReplaceAll(string(status), "_", " "))
	if status == models.AwaitingConfirmation {
		message = "Issue work completed. Please confirm if the issue is truly solved."
	}
	if err := s.notify(ctx, issue.Citizen, issueID, message); err != nil {
		return nil, err
	}

	return issue, nil
}

// ResolveOwn lets the reporting citizen close their own issue. Idempotent:
// an already-resolved issue is returned unchanged with no new records.
func (s *IssueService) ResolveOwn(ctx context.Context, actor *models.User, issueID primitive.ObjectID) (*models.Issue, error) {
	if actor.Role != models.RoleCitizen {
		return nil, ErrForbidden
	}

	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("issue find", err)
	}

	if issue.Citizen != actor.ID {
		return nil, ErrForbidden
	}

	if issue.Status == models.Resolved {
		return issue, nil
	}

	if err := s.issues.SetStatus(ctx, issueID, models.Resolved, true); err != nil {
		return nil, storeErr("issue status update", err)
	}
	issue.Status = models.Resolved
	issue.ResolutionConfirmed = true

	if err := s.appendUpdate(ctx, issueID, actor.ID, models.Resolved, "Marked resolved by reporter"); err != nil {
		return nil, err
	}
	if err := s.notify(ctx, actor.ID, issueID, "You confirmed the issue as resolved. Thank you!"); err != nil {
		return nil, err
	}

	return issue, nil
}

// ConfirmResolution records the citizen's acknowledgment that admin-reported
// work genuinely fixed the issue. Only valid once the issue is awaiting
// confirmation (or already resolved).
func (s *IssueService) ConfirmResolution(ctx context.Context, actor *models.User, issueID primitive.ObjectID) (*models.Issue, error) {
	if actor.Role != models.RoleCitizen {
		return nil, ErrForbidden
	}

	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("issue find", err)
	}

	if issue.Citizen != actor.ID {
		return nil, ErrForbidden
	}
	if issue.Status != models.AwaitingConfirmation && issue.Status != models.Resolved {
		return nil, ErrInvalidState
	}

	if err := s.issues.SetStatus(ctx, issueID, models.Resolved, true); err != nil {
		return nil, storeErr("issue status update", err)
	}
	issue.Status = models.Resolved
	issue.ResolutionConfirmed = true

	if err := s.appendUpdate(ctx, issueID, actor.ID, models.Resolved, "Resolution confirmed by citizen"); err != nil {
		return nil, err
	}
	if err := s.notify(ctx, actor.ID, issueID, "Thanks for confirming the resolution."); err != nil {
		return nil, err
	}

	return issue, nil
}

// Progress computes the supervisor view over one zone admin's workload:
// status counts plus the most recently touched issues. Issues are not always
// formally assigned, so when nothing is, both fall back to the issues the
// admin has authored updates for.
func (s *IssueService) Progress(ctx context.Context, actor *models.User, adminID primitive.ObjectID) (*AdminProgress, error) {
	if actor.Role != models.RoleAdmin2 {
		return nil, ErrForbidden
	}

	admin, err := s.users.FindByID(ctx, adminID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, storeErr("user find", err)
	}
	if admin.Role != models.RoleAdmin1 {
		return nil, ErrNotFound
	}

	byStatus, err := s.issues.CountsByStatusAssigned(ctx, adminID)
	if err != nil {
		return nil, storeErr("issue aggregate", err)
	}
	counts := tallyCounts(byStatus)

	if counts.Total == 0 {
		handledIDs, err := s.updates.DistinctIssues(ctx, adminID)
		if err != nil {
			return nil, storeErr("update distinct", err)
		}
		if len(handledIDs) > 0 {
			byStatus, err = s.issues.CountsByStatusForIssues(ctx, handledIDs)
			if err != nil {
				return nil, storeErr("issue aggregate", err)
			}
			counts = tallyCounts(byStatus)
		}
	}

	recent, err := s.issues.FindAssigned(ctx, adminID, s.recentIssueLimit)
	if err != nil {
		return nil, storeErr("issue find", err)
	}
	if len(recent) == 0 {
		recent, err = s.recentHandledIssues(ctx, adminID)
		if err != nil {
			return nil, err
		}
	}

	recentViews, err := s.joinIssues(ctx, recent)
	if err != nil {
		return nil, err
	}

	return &AdminProgress{
		Admin:        UserSummary{ID: admin.ID, Name: admin.Name, Email: admin.Email},
		Counts:       counts,
		RecentIssues: recentViews,
	}, nil
}

// recentHandledIssues scans the admin's latest updates, dedupes by issue
// preserving recency order, and resolves them to issue documents.
func (s *IssueService) recentHandledIssues(ctx context.Context, adminID primitive.ObjectID) ([]models.Issue, error) {
	recentUpdates, err := s.updates.FindByUpdater(ctx, adminID, s.updateScanLimit)
	if err != nil {
		return nil, storeErr("update find", err)
	}

	orderedIDs := make([]primitive.ObjectID, 0, s.recentIssueLimit)
	seen := make(map[primitive.ObjectID]bool)
	for _, u := range recentUpdates {
		if !seen[u.Issue] {
			seen[u.Issue] = true
			orderedIDs = append(orderedIDs, u.Issue)
		}
		if len(orderedIDs) >= s.recentIssueLimit {
			break
		}
	}
	if len(orderedIDs) == 0 {
		return nil, nil
	}

	found, err := s.issues.FindByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, storeErr("issue find", err)
	}

	byID := make(map[primitive.ObjectID]models.Issue, len(found))
	for _, issue := range found {
		byID[issue.ID] = issue
	}

	ordered := make([]models.Issue, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		if issue, ok := byID[id]; ok {
			ordered = append(ordered, issue)
		}
	}
	return ordered, nil
}

func (s *IssueService) appendUpdate(ctx context.Context, issueID, actorID primitive.ObjectID, status models.IssueStatus, comment string) error {
	update := &models.IssueUpdate{
		Issue:     issueID,
		UpdatedBy: actorID,
		Status:    status,
		Comment:   comment,
		IsPublic:  true,
		CreatedAt: time.Now(),
	}
	if err := s.updates.Insert(ctx, update); err != nil {
		return storeErr("update insert", err)
	}
	return nil
}

func (s *IssueService) notify(ctx context.Context, userID, issueID primitive.ObjectID, message string) error {
	notification := &models.Notification{
		User:      userID,
		Issue:     issueID,
		Message:   message,
		Type:      models.StatusUpdate,
		CreatedAt: time.Now(),
	}
	if err := s.notifications.Insert(ctx, notification); err != nil {
		return storeErr("notification insert", err)
	}
	return nil
}

func (s *IssueService) joinIssues(ctx context.Context, issues []models.Issue) ([]IssueView, error) {
	ids := make([]primitive.ObjectID, 0, len(issues)*2)
	for _, issue := range issues {
		ids = append(ids, issue.Citizen)
		if issue.AssignedTo != nil {
			ids = append(ids, *issue.AssignedTo)
		}
	}

	usersByID, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, issueView(issue, usersByID))
	}
	return views, nil
}

func (s *IssueService) usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, storeErr("user find", err)
	}

	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func tallyCounts(byStatus map[models.IssueStatus]int64) ProgressCounts {
	var counts ProgressCounts
	for status, n := range byStatus {
		counts.Total += n
		switch status {
		case models.Resolved:
			counts.Resolved = n
		case models.InProgress:
			counts.InProgress = n
		case models.Pending:
			counts.Pending = n
		case models.Acknowledged:
			counts.Acknowledged = n
		}
	}
	return counts
}

// parseLocationFilter turns "lat,lng,radiusKm" into a bounding box.
func parseLocationFilter(raw string) (*repository.GeoBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return nil, fmt.Errorf("location filter needs lat,lng")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	radius := defaultLocationRadiusKm
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		radius, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, err
		}
	}

	delta := radius * degreesPerKm
	return &repository.GeoBox{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLng: lng - delta,
		MaxLng: lng + delta,
	}, nil
}
