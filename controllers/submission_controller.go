package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ziraweb/models"
)

// SubmissionController lists persisted form submissions for the admin UI.
type SubmissionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSubmissionController(db *gorm.DB, logger *log.Logger) *SubmissionController {
	return &SubmissionController{DB: db, Logger: logger}
}

func (sc *SubmissionController) GetSubmissions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	query := sc.DB.Model(&models.FormSubmission{})
	if formType := c.Query("form_type"); formType != "" {
		query = query.Where("canonical_type = ?", formType)
	}
	if product := c.Query("product"); product != "" {
		query = query.Where("product_key = ?", product)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count submissions",
		})
	}

	var submissions []models.FormSubmission
	if err := query.Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&submissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch submissions",
		})
	}

	return c.JSON(fiber.Map{
		"submissions": submissions,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
	})
}

func (sc *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	var submission models.FormSubmission
	if err := sc.DB.Preload("Events").First(&submission, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Submission not found",
		})
	}
	return c.JSON(submission)
}
