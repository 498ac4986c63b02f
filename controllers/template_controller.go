package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ziraweb/automation"
	"ziraweb/models"
	"ziraweb/utils"
)

// TemplateController manages email templates from the admin UI.
type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{DB: db, Logger: logger}
}

type CreateTemplateRequest struct {
	Name      string `json:"name" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Variables string `json:"variables"`
	IsActive  *bool  `json:"is_active"`
}

type UpdateTemplateRequest struct {
	Name      *string `json:"name"`
	Subject   *string `json:"subject"`
	Content   *string `json:"content"`
	Variables *string `json:"variables"`
	IsActive  *bool   `json:"is_active"`
}

func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var req CreateTemplateRequest
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

	tpl := models.EmailTemplate{
		Name:      req.Name,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: req.Variables,
		IsActive:  true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := tc.DB.Create(&tpl).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create template",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(tpl)
}

func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	var templates []models.EmailTemplate
	if err := tc.DB.Order("id ASC").Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch templates",
		})
	}
	return c.JSON(templates)
}

func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	var tpl models.EmailTemplate
	if err := tc.DB.First(&tpl, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}
	return c.JSON(tpl)
}

func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var tpl models.EmailTemplate
	if err := tc.DB.First(&tpl, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	var req UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Subject != nil {
		tpl.Subject = *req.Subject
	}
	if req.Content != nil {
		tpl.Content = *req.Content
	}
	if req.Variables != nil {
		tpl.Variables = *req.Variables
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := tc.DB.Save(&tpl).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update template",
		})
	}

	return c.JSON(tpl)
}

func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	// Templates referenced by rules stay; the rule list is small enough to
	// check inline.
	var count int64
	if err := tc.DB.Model(&models.AutomationRule{}).
		Where("template_id = ?", c.Params("id")).
		Count(&count).Error; err == nil && count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Template is referenced by automation rules",
		})
	}

	if err := tc.DB.Delete(&models.EmailTemplate{}, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete template",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type PreviewTemplateRequest struct {
	Fields   map[string]string `json:"fields"`
	ForAdmin bool              `json:"for_admin"`
}

// PreviewTemplate renders the template against sample fields without
// sending anything.
func (tc *TemplateController) PreviewTemplate(c *fiber.Ctx) error {
	var tpl models.EmailTemplate
	if err := tc.DB.First(&tpl, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	var req PreviewTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sub := automation.NewSubmission("contact", req.Fields)
	rendered := automation.Render(&tpl, sub, req.ForAdmin)

	return c.JSON(fiber.Map{
		"subject": rendered.Subject,
		"html":    rendered.HTML,
		"text":    rendered.Text,
	})
}
