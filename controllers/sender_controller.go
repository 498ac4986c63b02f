package controller

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ziraweb/mailer"
	"ziraweb/models"
	"ziraweb/utils"
)

// SenderController manages the configured from-identities.
type SenderController struct {
	DB       *gorm.DB
	Provider mailer.Provider
	Logger   *log.Logger
}

func NewSenderController(db *gorm.DB, provider mailer.Provider, logger *log.Logger) *SenderController {
	return &SenderController{DB: db, Provider: provider, Logger: logger}
}

type CreateSenderRequest struct {
	FromName  string `json:"from_name" validate:"required"`
	FromEmail string `json:"from_email" validate:"required,email"`
	ReplyTo   string `json:"reply_to" validate:"omitempty,email"`
	IsDefault bool   `json:"is_default"`
}

type UpdateSenderRequest struct {
	FromName  *string `json:"from_name"`
	FromEmail *string `json:"from_email" validate:"omitempty,email"`
	ReplyTo   *string `json:"reply_to" validate:"omitempty,email"`
	IsDefault *bool   `json:"is_default"`
	IsActive  *bool   `json:"is_active"`
}

func (sc *SenderController) CreateSender(c *fiber.Ctx) error {
	var req CreateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	sender := models.EmailSender{
		FromName:  req.FromName,
		FromEmail: req.FromEmail,
		ReplyTo:   req.ReplyTo,
		IsDefault: req.IsDefault,
		IsActive:  true,
	}

	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if sender.IsDefault {
			if err := sc.clearDefaults(tx, 0); err != nil {
				return err
			}
		}
		return tx.Create(&sender).Error
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create sender",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(sender)
}

func (sc *SenderController) GetSenders(c *fiber.Ctx) error {
	var senders []models.EmailSender
	if err := sc.DB.Order("is_default DESC, id ASC").Find(&senders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch senders",
		})
	}
	return c.JSON(senders)
}

func (sc *SenderController) GetSender(c *fiber.Ctx) error {
	var sender models.EmailSender
	if err := sc.DB.First(&sender, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sender not found",
		})
	}
	return c.JSON(sender)
}

func (sc *SenderController) UpdateSender(c *fiber.Ctx) error {
	var sender models.EmailSender
	if err := sc.DB.First(&sender, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sender not found",
		})
	}

	var req UpdateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if req.FromName != nil {
		sender.FromName = *req.FromName
	}
	if req.FromEmail != nil && *req.FromEmail != sender.FromEmail {
		sender.FromEmail = *req.FromEmail
		// A new address means a possibly different domain; force re-check.
		sender.DomainVerified = false
		sender.LastVerifiedAt = nil
	}
	if req.ReplyTo != nil {
		sender.ReplyTo = *req.ReplyTo
	}
	if req.IsActive != nil {
		sender.IsActive = *req.IsActive
	}
	if req.IsDefault != nil {
		sender.IsDefault = *req.IsDefault
	}

	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		// Only one default at a time; flipping this sender on clears the rest.
		if req.IsDefault != nil && *req.IsDefault {
			if err := sc.clearDefaults(tx, sender.ID); err != nil {
				return err
			}
		}
		return tx.Save(&sender).Error
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update sender",
		})
	}

	return c.JSON(sender)
}

func (sc *SenderController) DeleteSender(c *fiber.Ctx) error {
	if err := sc.DB.Delete(&models.EmailSender{}, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete sender",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VerifySender checks the sender's domain both with the email provider and
// in DNS/whois, and caches the provider result on the row.
func (sc *SenderController) VerifySender(c *fiber.Ctx) error {
	var sender models.EmailSender
	if err := sc.DB.First(&sender, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Sender not found",
		})
	}

	domain := sender.Domain()
	if domain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sender has no valid from address",
		})
	}

	verified, err := sc.Provider.DomainVerified(c.UserContext(), domain)
	if err != nil {
		logrus.WithError(err).WithField("domain", domain).Error("provider domain verification failed")
		sentry.CaptureException(err)
		errMsg := err.Error()
		sender.LastError = &errMsg
	} else {
		now := time.Now()
		sender.DomainVerified = verified
		sender.LastVerifiedAt = &now
		sender.LastError = nil
	}

	if err := sc.DB.Save(&sender).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store verification result",
		})
	}

	dns, dnsErr := utils.CheckSenderDomain(domain)
	resp := fiber.Map{"sender": sender}
	if dnsErr == nil {
		resp["dns"] = dns
	}

	return c.JSON(resp)
}

func (sc *SenderController) clearDefaults(tx *gorm.DB, keepID uint) error {
	q := tx.Model(&models.EmailSender{}).Where("is_default = ?", true)
	if keepID != 0 {
		q = q.Where("id <> ?", keepID)
	}
	return q.Update("is_default", false).Error
}
