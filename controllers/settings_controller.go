package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ziraweb/models"
	"ziraweb/utils"
)

// SettingsController reads and writes the key/value settings store.
type SettingsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSettingsController(db *gorm.DB, logger *log.Logger) *SettingsController {
	return &SettingsController{DB: db, Logger: logger}
}

type PutSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

func (sc *SettingsController) GetSettings(c *fiber.Ctx) error {
	var settings []models.SiteSetting
	if err := sc.DB.Order("key ASC").Find(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch settings",
		})
	}
	return c.JSON(settings)
}

func (sc *SettingsController) GetSetting(c *fiber.Ctx) error {
	var setting models.SiteSetting
	if err := sc.DB.Where("key = ?", c.Params("key")).First(&setting).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Setting not found",
		})
	}
	return c.JSON(setting)
}

func (sc *SettingsController) PutSetting(c *fiber.Ctx) error {
	var req PutSettingRequest
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

	key := c.Params("key")
	setting := models.SiteSetting{Key: key, Value: req.Value}
	if err := sc.DB.Where("key = ?", key).
		Assign(models.SiteSetting{Value: req.Value}).
		FirstOrCreate(&setting).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store setting",
		})
	}

	return c.JSON(setting)
}

func (sc *SettingsController) DeleteSetting(c *fiber.Ctx) error {
	if err := sc.DB.Where("key = ?", c.Params("key")).
		Delete(&models.SiteSetting{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete setting",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
