package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ziraweb/models"
)

// EventController exposes the email audit trail and its dashboard stats.
type EventController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEventController(db *gorm.DB, logger *log.Logger) *EventController {
	return &EventController{DB: db, Logger: logger}
}

func (ec *EventController) GetEvents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	query := ec.DB.Model(&models.EmailEvent{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if ruleID := c.Query("rule_id"); ruleID != "" {
		query = query.Where("rule_id = ?", ruleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count events",
		})
	}

	var events []models.EmailEvent
	if err := query.Order("id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(fiber.Map{
		"events":   events,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetEventStats returns counts by status plus the last 30 days of sends for
// the dashboard chart.
func (ec *EventController) GetEventStats(c *fiber.Ctx) error {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var byStatus []statusCount
	if err := ec.DB.Model(&models.EmailEvent{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	type dayCount struct {
		Day   time.Time `json:"day"`
		Count int64     `json:"count"`
	}

	var perDay []dayCount
	since := time.Now().AddDate(0, 0, -30)
	if err := ec.DB.Model(&models.EmailEvent{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ? AND status = ?", since, models.EmailStatusSent).
		Group("day").
		Order("day ASC").
		Scan(&perDay).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(fiber.Map{
		"by_status": byStatus,
		"per_day":   perDay,
	})
}
