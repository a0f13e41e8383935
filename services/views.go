package services

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cityfix-be/models"
)

// UserSummary is the joined identity slice embedded in issue and update views.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email,omitempty"`
	Role  models.UserRole    `json:"role,omitempty"`
	Zone  string             `json:"zone,omitempty"`
}

// IssueView is an issue with its citizen and assignee identities joined in.
type IssueView struct {
	ID                  primitive.ObjectID   `json:"id"`
	Category            models.IssueCategory `json:"category"`
	Zone                string               `json:"zone"`
	Description         string               `json:"description"`
	PhotoURL            *string              `json:"photoUrl,omitempty"`
	Location            models.Location      `json:"location"`
	Status              models.IssueStatus   `json:"status"`
	Priority            models.IssuePriority `json:"priority"`
	ResolutionConfirmed bool                 `json:"resolutionConfirmed"`
	Citizen             *UserSummary         `json:"citizen,omitempty"`
	AssignedTo          *UserSummary         `json:"assignedTo,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// UpdateView is one history entry with the acting user joined in.
type UpdateView struct {
	ID        primitive.ObjectID `json:"id"`
	Status    models.IssueStatus `json:"status"`
	Comment   string             `json:"comment"`
	UpdatedBy *UserSummary       `json:"updatedBy,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// IssuePage is one page of a filtered listing.
type IssuePage struct {
	Issues      []IssueView `json:"issues"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Total       int64       `json:"total"`
}

// IssueDetail is an issue plus its full history, newest first.
type IssueDetail struct {
	Issue   IssueView    `json:"issue"`
	Updates []UpdateView `json:"updates"`
}

// ProgressCounts groups an admin's issues by status.
type ProgressCounts struct {
	Total        int64 `json:"total"`
	Resolved     int64 `json:"resolved"`
	InProgress   int64 `json:"in_progress"`
	Pending      int64 `json:"pending"`
	Acknowledged int64 `json:"acknowledged"`
}

// AdminProgress is the supervisor view over one zone admin's workload.
type AdminProgress struct {
	Admin        UserSummary    `json:"admin"`
	Counts       ProgressCounts `json:"counts"`
	RecentIssues []IssueView    `json:"recentIssues"`
}

func issueView(issue models.Issue, usersByID map[primitive.ObjectID]models.User) IssueView {
	view := IssueView{
		ID:                  issue.ID,
		Category:            issue.Category,
		Zone:                issue.Zone,
		Description:         issue.Description,
		PhotoURL:            issue.PhotoURL,
		Location:            issue.Location,
		Status:              issue.Status,
		Priority:            issue.Priority,
		ResolutionConfirmed: issue.ResolutionConfirmed,
		CreatedAt:           issue.CreatedAt,
		UpdatedAt:           issue.UpdatedAt,
	}
	if citizen, ok := usersByID[issue.Citizen]; ok {
		view.Citizen = &UserSummary{ID: citizen.ID, Name: citizen.Name, Email: citizen.Email}
	} else {
		view.Citizen = &UserSummary{ID: issue.Citizen}
	}
	if issue.AssignedTo != nil {
		if assignee, ok := usersByID[*issue.AssignedTo]; ok {
			view.AssignedTo = &UserSummary{ID: assignee.ID, Name: assignee.Name}
		} else {
			view.AssignedTo = &UserSummary{ID: *issue.AssignedTo}
		}
	}
	return view
}
