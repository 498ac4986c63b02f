package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// FormSubmission is a persisted inbound form post from the public website.
// The raw form type is kept as received; CanonicalType and ProductKey are
// filled by the normalizer before automation rules are matched.
type FormSubmission struct {
	gorm.Model

	Reference     string `gorm:"uniqueIndex;not null" json:"reference"`
	FormType      string `gorm:"not null;index" json:"form_type"`
	CanonicalType string `gorm:"index" json:"canonical_type"`
	ProductKey    string `json:"product_key"`

	// Common fields promoted to columns for listing/filtering in the admin UI.
	Name    string `json:"name"`
	Email   string `gorm:"index" json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`

	// Fields holds the full stringified field bag as JSON. Arbitrary extra
	// fields (position, cv_file_url, budget, ...) live here.
	Fields string `gorm:"type:text" json:"fields"`

	SourceIP string `json:"source_ip"`
	Origin   string `json:"origin"`

	// Relations
	Events []EmailEvent `gorm:"foreignKey:SubmissionID" json:"events,omitempty"`
}

// SetFields serializes the stringified field bag onto the row.
func (fs *FormSubmission) SetFields(fields map[string]string) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	fs.Fields = string(raw)
	return nil
}

// FieldMap deserializes the stored field bag. A missing or corrupt bag
// yields an empty map rather than an error; the pipeline treats absent
// fields as empty strings anyway.
func (fs *FormSubmission) FieldMap() map[string]string {
	fields := make(map[string]string)
	if fs.Fields == "" {
		return fields
	}
	if err := json.Unmarshal([]byte(fs.Fields), &fields); err != nil {
		return make(map[string]string)
	}
	return fields
}
