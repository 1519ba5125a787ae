package models

import "time"

// Contact submission statuses stored in the archive.
const (
	ContactStatusQueued = "queued"
	ContactStatusSent   = "sent"
	ContactStatusFailed = "failed"
)

// ServiceCategory identifies the service an enquiry is about.
type ServiceCategory string

// Service categories offered on the contact form.
const (
	ServiceAccounting    ServiceCategory = "accounting"
	ServiceTax           ServiceCategory = "tax"
	ServiceAudit         ServiceCategory = "audit"
	ServicePayroll       ServiceCategory = "payroll"
	ServiceRegistrations ServiceCategory = "registrations"
	ServiceWorkPermit    ServiceCategory = "work-permit"
	ServiceBOI           ServiceCategory = "boi"
	ServiceConsulting    ServiceCategory = "consulting"
)

// ServiceCategories lists every selectable service in display order.
var ServiceCategories = []ServiceCategory{
	ServiceAccounting,
	ServiceTax,
	ServiceAudit,
	ServicePayroll,
	ServiceRegistrations,
	ServiceWorkPermit,
	ServiceBOI,
	ServiceConsulting,
}

var serviceLabels = map[ServiceCategory]string{
	ServiceAccounting:    "Accounting & Bookkeeping",
	ServiceTax:           "Tax Planning & Filing",
	ServiceAudit:         "Audit & Assurance",
	ServicePayroll:       "Payroll & Social Security",
	ServiceRegistrations: "Company Registration",
	ServiceWorkPermit:    "Visa & Work Permit",
	ServiceBOI:           "BOI Promotion",
	ServiceConsulting:    "Business Consulting",
}

// Label returns the operator-facing name of the service.
func (c ServiceCategory) Label() string {
	if label, ok := serviceLabels[c]; ok {
		return label
	}
	return string(c)
}

// SubmissionRecord tracks the last accepted submission for a source key.
type SubmissionRecord struct {
	SourceKey      string
	LastAcceptedAt time.Time
}

// ContactSubmission stores accepted enquiries together with their delivery status.
type ContactSubmission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ReferenceID    string     `gorm:"size:64;uniqueIndex" json:"reference_id"`
	Name           string     `gorm:"size:128;not null" json:"name"`
	Phone          string     `gorm:"size:32;not null" json:"phone"`
	Email          string     `gorm:"size:160;not null" json:"email"`
	Service        string     `gorm:"size:64;not null" json:"service"`
	Message        string     `gorm:"type:text" json:"message"`
	SocialHandle   string     `gorm:"size:64" json:"social_handle"`
	SocialPlatform string     `gorm:"size:32" json:"social_platform"`
	Locale         string     `gorm:"size:16" json:"locale"`
	SourceKey      string     `gorm:"size:64;index" json:"-"`
	Status         string     `gorm:"size:32;not null" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeliveredAt    *time.Time `json:"delivered_at"`
}
