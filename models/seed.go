package models

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaults installs the baseline configuration on a fresh database: a
// confirmation template for submitters, a notification template for admins,
// one rule per template for the contact form, and the bootstrap admin
// account from ADMIN_EMAIL/ADMIN_PASSWORD. Rows are keyed by name or email
// so repeated startups are no-ops.
func SeedDefaults(db *gorm.DB) error {
	defaultTemplates := []EmailTemplate{
		{
			Name:    "contact-confirmation",
			Subject: "Thanks for reaching out, {{name}}",
			Content: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>We received your message</h2>
  <p>Hi {{name}},</p>
  <p>Thanks for contacting Ziratech. Our team will get back to you shortly.</p>
  <p>Your message:</p>
  <blockquote>{{message}}</blockquote>
</div>`,
			Variables: "name,message",
			IsActive:  true,
		},
		{
			Name:    "admin-contact-notification",
			Subject: "New contact submission from {{name}}",
			Content: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New website submission</h2>
  <p>A new contact form was submitted.</p>
  {{all_fields}}
</div>`,
			Variables: "name,all_fields",
			IsActive:  true,
		},
	}

	for i := range defaultTemplates {
		if err := db.Where("name = ?", defaultTemplates[i].Name).
			FirstOrCreate(&defaultTemplates[i]).Error; err != nil {
			return err
		}
	}

	defaultRules := []AutomationRule{
		{
			Name:          "Contact confirmation",
			TriggerType:   TriggerFormSubmission,
			IsActive:      true,
			FormType:      "contact",
			TemplateID:    defaultTemplates[0].ID,
			RecipientType: RecipientSubmitter,
		},
		{
			Name:          "Contact admin notification",
			TriggerType:   TriggerFormSubmission,
			IsActive:      true,
			FormType:      "contact",
			TemplateID:    defaultTemplates[1].ID,
			RecipientType: RecipientAdmin,
		},
	}

	for i := range defaultRules {
		if err := db.Where("name = ?", defaultRules[i].Name).
			FirstOrCreate(&defaultRules[i]).Error; err != nil {
			return err
		}
	}

	defaultSettings := []SiteSetting{
		{Key: SettingSiteName, Value: "Ziratech"},
	}

	for i := range defaultSettings {
		if err := db.Where("key = ?", defaultSettings[i].Key).
			FirstOrCreate(&defaultSettings[i]).Error; err != nil {
			return err
		}
	}

	admin, err := bootstrapAdmin()
	if err != nil {
		return err
	}
	if admin != nil {
		if err := db.Where("email = ?", admin.Email).
			FirstOrCreate(admin).Error; err != nil {
			return err
		}
	}

	return nil
}

// bootstrapAdmin builds the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Without both variables there is nothing to seed and the
// back office stays locked until an account is created another way.
func bootstrapAdmin() (*AdminUser, error) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		IsActive:     true,
	}, nil
}
