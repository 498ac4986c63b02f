package models

import "gorm.io/gorm"

// Well-known settings keys read by the automation pipeline.
const (
	SettingAdminRecipients = "admin_recipients"
	SettingReplyTo         = "reply_to"
	SettingSiteName        = "site_name"
)

// SiteSetting is a key/value row in the settings store. Admin-edited;
// the pipeline only reads it.
type SiteSetting struct {
	gorm.Model

	Key   string `gorm:"uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
