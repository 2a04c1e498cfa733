// internal/domain/models/lead.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead is a CRM prospect tracked by the sales team.
type Lead struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyName  string             `bson:"company_name" json:"companyName"`
	OwnerName    string             `bson:"owner_name" json:"ownerName"`
	Email        string             `bson:"email" json:"email"`
	Mobile       string             `bson:"mobile" json:"mobile"`
	Country      string             `bson:"country" json:"country"`
	State        string             `bson:"state" json:"state"`
	City         string             `bson:"city" json:"city"`
	SalesManager string             `bson:"sales_manager" json:"salesManager"`
	Status       string             `bson:"status" json:"status"`
	Type         string             `bson:"type" json:"type"`
	Source       string             `bson:"source" json:"source"`
	SourceLink   string             `bson:"source_link" json:"sourceLink"`
	Notes        string             `bson:"notes" json:"notes"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Lead pipeline statuses
const (
	LeadProspect      = "Prospect"
	LeadInterested    = "Interested"
	LeadDemoBooked    = "Demo Booked"
	LeadDemoCompleted = "Demo Completed"
	LeadFollowUp      = "Follow up"
	LeadUnderReview   = "Under Review"
	LeadOnboarded     = "Onboarded"
	LeadNotInterested = "Not Interested"
)

// DefaultLeadType is used when a lead is created without a type.
const DefaultLeadType = "Merchant"

// LeadStatuses returns the pipeline statuses in order.
func LeadStatuses() []string {
	return []string{
		LeadProspect,
		LeadInterested,
		LeadDemoBooked,
		LeadDemoCompleted,
		LeadFollowUp,
		LeadUnderReview,
		LeadOnboarded,
		LeadNotInterested,
	}
}

// IsValidLeadStatus checks if s is a pipeline status.
func IsValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses() {
		if v == s {
			return true
		}
	}
	return false
}
