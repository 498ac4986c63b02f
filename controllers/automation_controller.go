package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ziraweb/automation"
	"ziraweb/models"
	"ziraweb/utils"
)

// AutomationController manages email automation rules from the admin UI.
type AutomationController struct {
	DB       *gorm.DB
	Pipeline *automation.Pipeline
	Logger   *log.Logger
}

func NewAutomationController(db *gorm.DB, pipeline *automation.Pipeline, logger *log.Logger) *AutomationController {
	return &AutomationController{DB: db, Pipeline: pipeline, Logger: logger}
}

type CreateRuleRequest struct {
	Name            string `json:"name" validate:"required"`
	TriggerType     string `json:"trigger_type" validate:"required,oneof=form_submission user_signup time_based manual"`
	IsActive        *bool  `json:"is_active"`
	FormType        string `json:"form_type"`
	FormProduct     string `json:"form_product" validate:"omitempty,oneof=zira_web zira_sms zira_homes zira_lock"`
	TemplateID      uint   `json:"template_id" validate:"required"`
	RecipientType   string `json:"recipient_type" validate:"required,oneof=submitter admin custom"`
	CustomRecipient string `json:"custom_recipient" validate:"required_if=RecipientType custom,omitempty,email"`
	DelayMinutes    int    `json:"delay_minutes" validate:"min=0"`
}

type UpdateRuleRequest struct {
	Name            *string `json:"name"`
	TriggerType     *string `json:"trigger_type" validate:"omitempty,oneof=form_submission user_signup time_based manual"`
	IsActive        *bool   `json:"is_active"`
	FormType        *string `json:"form_type"`
	FormProduct     *string `json:"form_product" validate:"omitempty,oneof=zira_web zira_sms zira_homes zira_lock"`
	TemplateID      *uint   `json:"template_id"`
	RecipientType   *string `json:"recipient_type" validate:"omitempty,oneof=submitter admin custom"`
	CustomRecipient *string `json:"custom_recipient" validate:"omitempty,email"`
	DelayMinutes    *int    `json:"delay_minutes" validate:"omitempty,min=0"`
}

func (ac *AutomationController) CreateRule(c *fiber.Ctx) error {
	var req CreateRuleRequest
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

	// Rules must point at an existing template.
	var tpl models.EmailTemplate
	if err := ac.DB.First(&tpl, req.TemplateID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	rule := models.AutomationRule{
		Name:            req.Name,
		TriggerType:     req.TriggerType,
		IsActive:        true,
		FormType:        req.FormType,
		FormProduct:     req.FormProduct,
		TemplateID:      req.TemplateID,
		RecipientType:   req.RecipientType,
		CustomRecipient: req.CustomRecipient,
		DelayMinutes:    req.DelayMinutes,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := ac.DB.Create(&rule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create rule",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (ac *AutomationController) GetRules(c *fiber.Ctx) error {
	var rules []models.AutomationRule
	if err := ac.DB.Preload("Template").Order("id ASC").Find(&rules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch rules",
		})
	}
	return c.JSON(rules)
}

func (ac *AutomationController) GetRule(c *fiber.Ctx) error {
	var rule models.AutomationRule
	if err := ac.DB.Preload("Template").First(&rule, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Rule not found",
		})
	}
	return c.JSON(rule)
}

func (ac *AutomationController) UpdateRule(c *fiber.Ctx) error {
	var rule models.AutomationRule
	if err := ac.DB.First(&rule, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Rule not found",
		})
	}

	var req UpdateRuleRequest
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

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.TriggerType != nil {
		rule.TriggerType = *req.TriggerType
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.FormType != nil {
		rule.FormType = *req.FormType
	}
	if req.FormProduct != nil {
		rule.FormProduct = *req.FormProduct
	}
	if req.TemplateID != nil {
		var tpl models.EmailTemplate
		if err := ac.DB.First(&tpl, *req.TemplateID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Template not found",
			})
		}
		rule.TemplateID = *req.TemplateID
	}
	if req.RecipientType != nil {
		rule.RecipientType = *req.RecipientType
	}
	if req.CustomRecipient != nil {
		rule.CustomRecipient = *req.CustomRecipient
	}
	if req.DelayMinutes != nil {
		rule.DelayMinutes = *req.DelayMinutes
	}

	// Custom rules need somewhere to deliver to.
	if rule.RecipientType == models.RecipientCustom && rule.CustomRecipient == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "custom_recipient is required for custom recipient rules",
		})
	}

	if err := ac.DB.Save(&rule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update rule",
		})
	}

	return c.JSON(rule)
}

func (ac *AutomationController) DeleteRule(c *fiber.Ctx) error {
	if err := ac.DB.Delete(&models.AutomationRule{}, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete rule",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type TestRuleRequest struct {
	FormType string            `json:"form_type" validate:"required"`
	Fields   map[string]string `json:"fields" validate:"required"`
}

// TestRule runs a sample submission through the full pipeline so operators
// can check a rule end to end. Sends are real; use a sandbox recipient.
func (ac *AutomationController) TestRule(c *fiber.Ctx) error {
	var rule models.AutomationRule
	if err := ac.DB.First(&rule, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Rule not found",
		})
	}

	var req TestRuleRequest
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

	sub := automation.NewSubmission(req.FormType, req.Fields)
	outcome := ac.Pipeline.Process(c.UserContext(), sub)

	results := make([]fiber.Map, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		entry := fiber.Map{"rule_id": r.RuleID, "rule_name": r.RuleName}
		if r.Event != nil {
			entry["status"] = r.Event.Status
			entry["recipient"] = r.Event.RecipientEmail
			entry["subject"] = r.Event.Subject
		}
		if r.Err != nil {
			entry["error"] = r.Err.Error()
		}
		results = append(results, entry)
	}

	return c.JSON(fiber.Map{
		"matched":   outcome.Matched,
		"processed": outcome.Processed,
		"results":   results,
	})
}
