package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Infrastructure IssueCategory = "Infrastructure"
	Environment    IssueCategory = "Environment"
	Safety         IssueCategory = "Safety"
	Transportation IssueCategory = "Transportation"
	Utilities      IssueCategory = "Utilities"
	Other          IssueCategory = "Other"
)

func ValidCategory(s string) bool {
	switch IssueCategory(s) {
	case Infrastructure, Environment, Safety, Transportation, Utilities, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Pending              IssueStatus = "pending"
	Acknowledged         IssueStatus = "acknowledged"
	InProgress           IssueStatus = "in_progress"
	AwaitingConfirmation IssueStatus = "awaiting_confirmation"
	Resolved             IssueStatus = "resolved"
)

func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Pending, Acknowledged, InProgress, AwaitingConfirmation, Resolved:
		return true
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	Low    IssuePriority = "low"
	Medium IssuePriority = "medium"
	High   IssuePriority = "high"
	Urgent IssuePriority = "urgent"
)

func ValidPriority(s string) bool {
	switch IssuePriority(s) {
	case Low, Medium, High, Urgent:
		return true
	}
	return false
}

// Location is a point with a free-text address.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Address   string  `bson:"address" json:"address"`
}

// Issue represents a civic issue reported by a citizen. The status field is a
// cached projection of the latest IssueUpdate; the update log is the
// authoritative history.
type Issue struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Citizen             primitive.ObjectID  `bson:"citizen" json:"citizen"`
	Category            IssueCategory       `bson:"category" json:"category"`
	Zone                string              `bson:"zone" json:"zone"`
	Description         string              `bson:"description" json:"description"`
	PhotoURL            *string             `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	Location            Location            `bson:"location" json:"location"`
	Status              IssueStatus         `bson:"status" json:"status"`
	AssignedTo          *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Priority            IssuePriority       `bson:"priority" json:"priority"`
	ResolutionConfirmed bool                `bson:"resolutionConfirmed" json:"resolutionConfirmed"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}
