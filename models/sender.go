package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// EmailSender is a configured from-identity for outgoing mail. At most one
// sender should be flagged default; the CRUD layer clears other defaults on
// update, and the dispatcher tolerates duplicates by taking the lowest id.
type EmailSender struct {
	gorm.Model

	FromName  string `gorm:"not null" json:"from_name"`
	FromEmail string `gorm:"not null" json:"from_email"`
	ReplyTo   string `json:"reply_to"`

	IsDefault bool `gorm:"default:false;index" json:"is_default"`
	IsActive  bool `gorm:"default:true;index" json:"is_active"`

	// Provider-side domain verification state, refreshed by the verify
	// endpoint and checked by the dispatcher before using this identity.
	DomainVerified bool       `gorm:"default:false" json:"domain_verified"`
	LastVerifiedAt *time.Time `json:"last_verified_at"`
	LastError      *string    `json:"last_error"`
}

// Domain returns the domain part of the sender's from address.
func (s *EmailSender) Domain() string {
	at := strings.LastIndex(s.FromEmail, "@")
	if at < 0 {
		return ""
	}
	return s.FromEmail[at+1:]
}
