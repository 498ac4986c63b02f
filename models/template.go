package models

import "gorm.io/gorm"

// EmailTemplate is an admin-authored subject + HTML body. Subject and
// Content may contain {{var}} placeholders; Content may additionally use
// {{all_fields}} to place the submission field-dump table.
type EmailTemplate struct {
	gorm.Model

	Name     string `gorm:"not null" json:"name"`
	Subject  string `gorm:"not null" json:"subject"`
	Content  string `gorm:"type:text" json:"content"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Variables is the comma-separated list of placeholder names the
	// template author declared. Informational for the admin UI; the
	// renderer substitutes whatever the submission actually carries.
	Variables string `json:"variables"`
}
