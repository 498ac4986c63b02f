package models

import (
	"time"

	"gorm.io/gorm"
)

// Email event statuses.
const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusPending = "pending"
)

// EmailEvent is the audit trail of the automation pipeline: exactly one row
// per (rule, submission) dispatch attempt. Rows are immutable after the
// dispatch completes; the pipeline never deletes them. Pending rows carry a
// SendAt and are delivered later by the dispatch worker.
type EmailEvent struct {
	gorm.Model

	RuleID       uint `gorm:"index" json:"rule_id"`
	TemplateID   uint `gorm:"index" json:"template_id"`
	SubmissionID uint `gorm:"index" json:"submission_id"`

	RecipientEmail string  `gorm:"not null" json:"recipient_email"`
	Subject        string  `json:"subject"`
	Status         string  `gorm:"not null;index" json:"status"`
	ErrorMessage   *string `json:"error_message"`

	ProviderMessageID string `json:"provider_message_id"`

	// Rendered content, stored so pending events can be delivered without
	// re-running the renderer against mutated configuration.
	HTML string `gorm:"type:text" json:"-"`
	Text string `gorm:"type:text" json:"-"`

	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	ReplyTo   string `json:"reply_to"`
	Tracking  bool   `json:"tracking"`

	SendAt *time.Time `gorm:"index" json:"send_at"`
	SentAt *time.Time `json:"sent_at"`
}
