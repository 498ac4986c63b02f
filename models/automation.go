package models

import (
	"time"

	"gorm.io/gorm"
)

// Trigger types for automation rules.
const (
	TriggerFormSubmission = "form_submission"
	TriggerUserSignup     = "user_signup"
	TriggerTimeBased      = "time_based"
	TriggerManual         = "manual"
)

// Recipient policies for automation rules.
const (
	RecipientSubmitter = "submitter"
	RecipientAdmin     = "admin"
	RecipientCustom    = "custom"
)

// AutomationRule maps a trigger condition to an email template and a
// recipient policy. Rules are admin-managed configuration; the pipeline
// only mutates SentCount and LastSentAt after a successful send.
type AutomationRule struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	TriggerType string `gorm:"not null;index" json:"trigger_type"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`

	// Trigger conditions. FormType is matched against the submission's
	// canonical type; an empty FormProduct matches any product.
	FormType    string `json:"form_type"`
	FormProduct string `json:"form_product"`

	TemplateID uint `gorm:"not null;index" json:"template_id"`

	RecipientType   string `gorm:"not null;default:'admin'" json:"recipient_type"`
	CustomRecipient string `json:"custom_recipient"`

	DelayMinutes int        `gorm:"default:0" json:"delay_minutes"`
	SentCount    int        `gorm:"default:0" json:"sent_count"`
	LastSentAt   *time.Time `json:"last_sent_at"`

	// Relations
	Template EmailTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}
