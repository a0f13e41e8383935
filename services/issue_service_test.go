package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/internal/testutil"
	"cityfix-be/models"
	"cityfix-be/services"
)

type fixture struct {
	users         *testutil.MemUserRepo
	issues        *testutil.MemIssueRepo
	updates       *testutil.MemUpdateRepo
	notifications *testutil.MemNotificationRepo
	service       *services.IssueService

	citizen *models.User
	admin1  *models.User
	admin2  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:         &testutil.MemUserRepo{},
		issues:        &testutil.MemIssueRepo{},
		updates:       &testutil.MemUpdateRepo{},
		notifications: &testutil.MemNotificationRepo{},
	}
	f.service = services.NewIssueService(f.issues, f.updates, f.notifications, f.users, 50, 5)

	f.citizen = f.addUser("Ana Reyes", "ana@example.com", models.RoleCitizen, "")
	f.admin1 = f.addUser("Luis Vega", "luis@example.com", models.RoleAdmin1, "North District")
	f.admin2 = f.addUser("Mira Chen", "mira@example.com", models.RoleAdmin2, "")
	return f
}

func (f *fixture) addUser(name, email string, role models.UserRole, zone string) *models.User {
	user := &models.User{
		Name:      name,
		Email:     email,
		Role:      role,
		Zone:      zone,
		CreatedAt: time.Now(),
	}
	_, _ = f.users.Insert(context.Background(), user)
	return user
}

func (f *fixture) submit(t *testing.T, in services.SubmitInput) *models.Issue {
	t.Helper()
	issue, err := f.service.Submit(context.Background(), f.citizen, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return issue
}

func validSubmit() services.SubmitInput {
	return services.SubmitInput{
		Category:    "Infrastructure",
		Zone:        "North District",
		Description: "Large pothole near the school entrance",
		Latitude:    40.7,
		Longitude:   -74.0,
		Address:     "12 Main St",
	}
}

func TestSubmitCreatesPendingIssueWithFirstUpdateAndNotification(t *testing.T) {
	f := newFixture(t)

	issue := f.submit(t, validSubmit())

	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, models.Medium, issue.Priority)
	assert.False(t, issue.ResolutionConfirmed)
	assert.Equal(t, f.citizen.ID, issue.Citizen)

	updates, _ := f.updates.FindByIssue(context.Background(), issue.ID)
	require.Len(t, updates, 1)
	assert.Equal(t, models.Pending, updates[0].Status)
	assert.Equal(t, "Issue submitted", updates[0].Comment)
	assert.Equal(t, f.citizen.ID, updates[0].UpdatedBy)

	require.Len(t, f.notifications.Notifications, 1)
	n := f.notifications.Notifications[0]
	assert.Equal(t, f.citizen.ID, n.User)
	assert.Equal(t, issue.ID, n.Issue)
	assert.Contains(t, n.Message, "infrastructure issue has been submitted")
	assert.False(t, n.IsRead)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*services.SubmitInput)
		field  string
	}{
		{"bad category", func(in *services.SubmitInput) { in.Category = "Potholes" }, "category"},
		{"short description", func(in *services.SubmitInput) { in.Description = "too short" }, "description"},
		{"latitude out of range", func(in *services.SubmitInput) { in.Latitude = 91 }, "latitude"},
		{"longitude out of range", func(in *services.SubmitInput) { in.Longitude = -181 }, "longitude"},
		{"empty zone", func(in *services.SubmitInput) { in.Zone = "  " }, "zone"},
		{"bad priority", func(in *services.SubmitInput) { in.Priority = "critical" }, "priority"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSubmit()
			tc.mutate(&in)

			_, err := f.service.Submit(context.Background(), f.citizen, in)

			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	// No partial writes on validation failure.
	assert.Empty(t, f.issues.Issues)
	assert.Empty(t, f.updates.Updates)
	assert.Empty(t, f.notifications.Notifications)
}

func TestSubmitRequiresCitizenRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), f.admin1, validSubmit())
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestListScopesAdmin1ToItsZone(t *testing.T) {
	f := newFixture(t)

	in := validSubmit()
	in.Zone = "North District"
	north := f.submit(t, in)

	in = validSubmit()
	in.Zone = "South District"
	f.submit(t, in)

	page, err := f.service.List(context.Background(), f.admin1, services.ListInput{})
	require.NoError(t, err)

	require.Len(t, page.Issues, 1)
	assert.Equal(t, north.ID, page.Issues[0].ID)
	assert.Equal(t, "North District", page.Issues[0].Zone)

	// Citizens and admin2 see both zones.
	page, err = f.service.List(context.Background(), f.admin2, services.ListInput{})
	require.NoError(t, err)
	assert.Len(t, page.Issues, 2)
	assert.Equal(t, int64(2), page.Total)
}

func TestListLocationFilterUsesBoundingBox(t *testing.T) {
	f := newFixture(t)

	near := validSubmit()
	near.Latitude = 40.0
	near.Longitude = -73.0
	nearIssue := f.submit(t, near)

	far := validSubmit()
	far.Latitude = 45.0
	far.Longitude = 10.0
	f.submit(t, far)

	page, err := f.service.List(context.Background(), f.citizen, services.ListInput{Location: "40.0,-73.0,10"})
	require.NoError(t, err)

	require.Len(t, page.Issues, 1)
	assert.Equal(t, nearIssue.ID, page.Issues[0].ID)
}

func TestListRejectsMalformedFilters(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.List(context.Background(), f.citizen, services.ListInput{Location: "not-a-point"})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "location")

	_, err = f.service.List(context.Background(), f.citizen, services.ListInput{AssignedTo: "zzz"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "assignedTo")
}

func TestListJoinsCitizenAndAssignee(t *testing.T) {
	f := newFixture(t)

	issue := f.submit(t, validSubmit())
	// Assign directly in the store.
	f.issues.Issues[0].AssignedTo = &f.admin1.ID

	page, err := f.service.List(context.Background(), f.admin2, services.ListInput{})
	require.NoError(t, err)
	require.Len(t, page.Issues, 1)
	assert.Equal(t, issue.ID, page.Issues[0].ID)

	require.NotNil(t, page.Issues[0].Citizen)
	assert.Equal(t, "Ana Reyes", page.Issues[0].Citizen.Name)
	assert.Equal(t, "ana@example.com", page.Issues[0].Citizen.Email)
	require.NotNil(t, page.Issues[0].AssignedTo)
	assert.Equal(t, "Luis Vega", page.Issues[0].AssignedTo.Name)
}

func TestGetReturnsHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)

	issue := f.submit(t, validSubmit())
	_, err := f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "acknowledged", "On it")
	require.NoError(t, err)

	detail, err := f.service.Get(context.Background(), issue.ID)
	require.NoError(t, err)

	require.Len(t, detail.Updates, 2)
	assert.Equal(t, models.Acknowledged, detail.Updates[0].Status)
	assert.Equal(t, "On it", detail.Updates[0].Comment)
	require.NotNil(t, detail.Updates[0].UpdatedBy)
	assert.Equal(t, models.RoleAdmin1, detail.Updates[0].UpdatedBy.Role)
	assert.Equal(t, models.Pending, detail.Updates[1].Status)
}

func TestGetUnknownIssue(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUserIssuesOwnershipGuard(t *testing.T) {
	f := newFixture(t)
	other := f.addUser("Bo Park", "bo@example.com", models.RoleCitizen, "")

	f.submit(t, validSubmit())

	// Another citizen may not read someone else's issues.
	_, err := f.service.UserIssues(context.Background(), other, f.citizen.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	// The owner and admins may.
	issues, err := f.service.UserIssues(context.Background(), f.citizen, f.citizen.ID)
	require.NoError(t, err)
	assert.Len(t, issues, 1)

	issues, err = f.service.UserIssues(context.Background(), f.admin2, f.citizen.ID)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestUpdateStatusClearsConfirmationUnlessResolved(t *testing.T) {
	f := newFixture(t)

	issue := f.submit(t, validSubmit())

	// Citizen resolves, confirming resolution.
	_, err := f.service.ResolveOwn(context.Background(), f.citizen, issue.ID)
	require.NoError(t, err)

	// Admin reopening the issue invalidates the confirmation.
	updated, err := f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "in_progress", "reopening")
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, updated.Status)
	assert.False(t, updated.ResolutionConfirmed)

	stored, _ := f.issues.FindByID(context.Background(), issue.ID)
	assert.False(t, stored.ResolutionConfirmed)
}

func TestUpdateStatusGuards(t *testing.T) {
	f := newFixture(t)
	issue := f.submit(t, validSubmit())

	_, err := f.service.UpdateStatus(context.Background(), f.citizen, issue.ID, "acknowledged", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "closed", "")
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")

	_, err = f.service.UpdateStatus(context.Background(), f.admin1, primitive.NewObjectID(), "acknowledged", "")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateStatusNotifiesCitizen(t *testing.T) {
	f := newFixture(t)
	issue := f.submit(t, validSubmit())

	_, err := f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "in_progress", "")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "awaiting_confirmation", "")
	require.NoError(t, err)

	// submit + two status updates
	require.Len(t, f.notifications.Notifications, 3)

	inProgress := f.notifications.Notifications[1]
	assert.Equal(t, f.citizen.ID, inProgress.User)
	assert.Contains(t, inProgress.Message, "updated to in progress")

	awaiting := f.notifications.Notifications[2]
	assert.Contains(t, awaiting.Message, "Please confirm")
}

func TestResolveOwnIsIdempotent(t *testing.T) {
	f := newFixture(t)
	issue := f.submit(t, validSubmit())

	first, err := f.service.ResolveOwn(context.Background(), f.citizen, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, first.Status)
	assert.True(t, first.ResolutionConfirmed)

	updatesBefore := len(f.updates.Updates)
	notificationsBefore := len(f.notifications.Notifications)

	second, err := f.service.ResolveOwn(context.Background(), f.citizen, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, second.Status)

	assert.Equal(t, updatesBefore, len(f.updates.Updates))
	assert.Equal(t, notificationsBefore, len(f.notifications.Notifications))
}

func TestResolveOwnRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	other := f.addUser("Bo Park", "bo@example.com", models.RoleCitizen, "")
	issue := f.submit(t, validSubmit())

	_, err := f.service.ResolveOwn(context.Background(), other, issue.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.ResolveOwn(context.Background(), f.admin1, issue.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestConfirmResolutionStateGuard(t *testing.T) {
	f := newFixture(t)

	for _, status := range []string{"pending", "acknowledged", "in_progress"} {
		t.Run(status, func(t *testing.T) {
			issue := f.submit(t, validSubmit())
			if status != "pending" {
				_, err := f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, status, "")
				require.NoError(t, err)
			}

			_, err := f.service.ConfirmResolution(context.Background(), f.citizen, issue.ID)
			assert.ErrorIs(t, err, services.ErrInvalidState)
		})
	}
}

func TestSubmitToConfirmationScenario(t *testing.T) {
	f := newFixture(t)

	issue := f.submit(t, services.SubmitInput{
		Category:    "Safety",
		Zone:        "North District",
		Description: "Broken streetlight on Oak",
		Latitude:    40.0,
		Longitude:   -73.0,
		Priority:    "high",
	})
	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, models.High, issue.Priority)

	_, err := f.service.UpdateStatus(context.Background(), f.admin1, issue.ID, "awaiting_confirmation", "Light replaced")
	require.NoError(t, err)

	// Citizen sees the confirmation prompt.
	var prompt bool
	for _, n := range f.notifications.Notifications {
		if n.User == f.citizen.ID && strings.Contains(n.Message, "Please confirm if the issue is truly solved") {
			prompt = true
		}
	}
	assert.True(t, prompt, "expected a confirmation prompt notification")

	confirmed, err := f.service.ConfirmResolution(context.Background(), f.citizen, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, confirmed.Status)
	assert.True(t, confirmed.ResolutionConfirmed)

	updates, _ := f.updates.FindByIssue(context.Background(), issue.ID)
	assert.Len(t, updates, 3) // initial + status update + confirmation
	assert.Equal(t, "Resolution confirmed by citizen", updates[0].Comment)
}

func TestProgressRequiresAdmin2AndKnownAdmin1(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Progress(context.Background(), f.admin1, f.admin1.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = f.service.Progress(context.Background(), f.admin2, primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)

	// A citizen id is not an admin1.
	_, err = f.service.Progress(context.Background(), f.admin2, f.citizen.ID)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestProgressCountsAssignedIssues(t *testing.T) {
	f := newFixture(t)

	for _, status := range []models.IssueStatus{models.Pending, models.InProgress, models.Resolved} {
		issue := f.submit(t, validSubmit())
		for i := range f.issues.Issues {
			if f.issues.Issues[i].ID == issue.ID {
				f.issues.Issues[i].AssignedTo = &f.admin1.ID
				f.issues.Issues[i].Status = status
			}
		}
	}

	progress, err := f.service.Progress(context.Background(), f.admin2, f.admin1.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), progress.Counts.Total)
	assert.Equal(t, int64(1), progress.Counts.Pending)
	assert.Equal(t, int64(1), progress.Counts.InProgress)
	assert.Equal(t, int64(1), progress.Counts.Resolved)
	assert.Len(t, progress.RecentIssues, 3)
	assert.Equal(t, "Luis Vega", progress.Admin.Name)
}

func TestProgressFallsBackToHandledIssues(t *testing.T) {
	f := newFixture(t)

	// Two issues the admin has touched without ever being assigned.
	a := f.submit(t, validSubmit())
	b := f.submit(t, validSubmit())

	base := time.Now()
	for i, entry := range []struct {
		issue  primitive.ObjectID
		status models.IssueStatus
	}{
		{a.ID, models.Acknowledged},
		{b.ID, models.InProgress},
		{a.ID, models.InProgress},
	} {
		_ = f.updates.Insert(context.Background(), &models.IssueUpdate{
			Issue:     entry.issue,
			UpdatedBy: f.admin1.ID,
			Status:    entry.status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	for i := range f.issues.Issues {
		switch f.issues.Issues[i].ID {
		case a.ID:
			f.issues.Issues[i].Status = models.InProgress
		case b.ID:
			f.issues.Issues[i].Status = models.InProgress
		}
	}

	progress, err := f.service.Progress(context.Background(), f.admin2, f.admin1.ID)
	require.NoError(t, err)

	// Three updates over two distinct issues count as two.
	assert.Equal(t, int64(2), progress.Counts.Total)
	assert.Equal(t, int64(2), progress.Counts.InProgress)
	require.Len(t, progress.RecentIssues, 2)
	// Ordered by the admin's most recent update, duplicates suppressed.
	assert.Equal(t, a.ID, progress.RecentIssues[0].ID)
	assert.Equal(t, b.ID, progress.RecentIssues[1].ID)
}

func TestProgressFallbackRespectsRecentIssueLimit(t *testing.T) {
	f := newFixture(t)
	service := services.NewIssueService(f.issues, f.updates, f.notifications, f.users, 50, 2)

	var issueIDs []primitive.ObjectID
	base := time.Now()
	for i := 0; i < 4; i++ {
		issue := f.submit(t, validSubmit())
		issueIDs = append(issueIDs, issue.ID)
		_ = f.updates.Insert(context.Background(), &models.IssueUpdate{
			Issue:     issue.ID,
			UpdatedBy: f.admin1.ID,
			Status:    models.Acknowledged,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	progress, err := service.Progress(context.Background(), f.admin2, f.admin1.ID)
	require.NoError(t, err)

	require.Len(t, progress.RecentIssues, 2)
	assert.Equal(t, issueIDs[3], progress.RecentIssues[0].ID)
	assert.Equal(t, issueIDs[2], progress.RecentIssues[1].ID)
}
